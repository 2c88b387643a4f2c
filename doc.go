// Package report renders product rows into downloadable report files.
//
// Four formats are supported: CSV, JSON, Excel, and PDF. Each is a
// [Generator] strategy with the same two operations: Generate turns a slice
// of [Row] values into a complete file payload, and Filename suggests the
// download name.
//
// # Selecting a Format
//
// A [Factory] maps a configured format name to a strategy:
//
//	g, err := report.NewFactory(opts).Select(cfg.Format)
//	if err != nil { ... }
//	data, err := g.Generate(rows)
//
// Names are matched case-insensitively. Unknown or empty names select CSV.
// Use [ParseFormat] to validate a name without building anything.
//
// # Optional Writers
//
// Excel and PDF depend on third-party writers that can be left out of a
// build with the "noxlsx" and "nopdf" tags. Constructors only run when
// their format is selected, so a missing writer never affects the other
// formats. Selecting a format whose writer is missing, or whose constructor
// fails, returns a [*ConfigError]; the factory never substitutes another
// format.
//
// # Rows
//
// [Row] carries a fixed field set (see [Fields]). Zero values are the
// defaults, so every field always has a value. [RowFromMap] converts a
// generic record and rejects values it cannot represent.
//
// # CSV
//
// Header plus one line per row. [Options].Columns selects and orders the
// columns (default: every field) and [Options].Delimiter sets the
// separator (default comma). Timestamps are ISO-8601.
//
// # JSON
//
// An array of objects keyed by field name. Indented with [Options].Indent
// (default two spaces) unless [Options].Compact is set. Non-ASCII text is
// written as is.
//
// # Excel
//
// A single worksheet with a bold "Nombre, Precio" header and one row per
// product. Only name and price are written.
//
// # PDF
//
// A title followed by one block per product: name and price, the wrapped
// description, category/material/color, and stock/seller/created. A block
// is moved to a new page rather than split, unless it is taller than a
// whole page. [PageConfig] controls size, margins, wrap width, and the page
// break threshold.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrUnsupportedFormat] — unknown format name passed to [ParseFormat]
//   - [ErrMissingCapability] — the format's writer is not in the build
//   - [ErrEncoding] — a value could not be encoded
//   - [ErrInvalidOption] — an [Options] value no strategy can honour
package report
