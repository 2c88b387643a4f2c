package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingCapability = errors.New("missing capability")
	ErrEncoding          = errors.New("encoding failed")
	ErrInvalidOption     = errors.New("invalid option")
)

// Format represents a report output format.
type Format string

const (
	CSV   Format = "csv"
	JSON  Format = "json"
	Excel Format = "excel"
	PDF   Format = "pdf"
)

var formats = []Format{CSV, JSON, Excel, PDF}

var aliases = map[string]Format{
	"xlsx": Excel,
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all recognized format names.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format string. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	if f, ok := aliases[name]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Generator renders report rows into a complete file payload.
type Generator interface {
	// Generate returns the encoded report. It never mutates rows and
	// returns no bytes on failure.
	Generate(rows []Row) ([]byte, error)
	// Filename returns the suggested download name, extension included.
	Filename() string
}

// ContentType is the media type used when serving any generated report.
const ContentType = "application/octet-stream"

// Options configures the built-in strategies. Zero fields take the
// defaults documented on each field.
type Options struct {
	// Columns selects and orders CSV columns. Default: [Fields].
	Columns []string
	// Delimiter is the CSV field separator. Default: comma.
	Delimiter rune
	// Indent is the JSON indentation unit. Default: two spaces.
	Indent string
	// Compact disables JSON indentation.
	Compact bool
	// SheetName names the Excel worksheet. Default: "Productos".
	SheetName string
	// Page configures the PDF layout.
	Page PageConfig
}

// PageConfig controls PDF page geometry and layout. Lengths are in
// millimetres.
type PageConfig struct {
	// Title is drawn at the top of the first page. Default: "Reporte de Productos".
	Title string
	// Size is one of A3, A4, A5, Letter, Legal. Default: A4.
	Size string
	// Orientation is "P" or "L". Default: "P".
	Orientation string
	// Margin applies to all four sides. Default: 20.
	Margin float64
	// LineHeight is the vertical advance per text line. Default: 6.
	LineHeight float64
	// FontSize in points. Default: 10.
	FontSize float64
	// MaxLineWidth is the description wrap width in display columns.
	// Default: 80.
	MaxLineWidth int
	// BreakThreshold is the minimum remaining space below which a new page
	// starts before the next row. Default: 4 line heights.
	BreakThreshold float64
	// FontFile is an optional UTF-8 TrueType font. Default: core Helvetica.
	FontFile string
	// CreationDate is written to the document metadata. Default: Unix epoch.
	CreationDate time.Time
}

const (
	defaultSheetName    = "Productos"
	defaultTitle        = "Reporte de Productos"
	defaultPageSize     = "A4"
	defaultOrientation  = "P"
	defaultMargin       = 20.0
	defaultLineHeight   = 6.0
	defaultFontSize     = 10.0
	defaultMaxLineWidth = 80
)

func (o Options) withDefaults() Options {
	if len(o.Columns) == 0 {
		o.Columns = Fields()
	} else {
		o.Columns = append([]string(nil), o.Columns...)
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Indent == "" {
		o.Indent = "  "
	}
	if o.SheetName == "" {
		o.SheetName = defaultSheetName
	}
	o.Page = o.Page.withDefaults()
	return o
}

func (p PageConfig) withDefaults() PageConfig {
	if p.Title == "" {
		p.Title = defaultTitle
	}
	if p.Size == "" {
		p.Size = defaultPageSize
	}
	if p.Orientation == "" {
		p.Orientation = defaultOrientation
	}
	if p.Margin <= 0 {
		p.Margin = defaultMargin
	}
	if p.LineHeight <= 0 {
		p.LineHeight = defaultLineHeight
	}
	if p.FontSize <= 0 {
		p.FontSize = defaultFontSize
	}
	if p.MaxLineWidth <= 0 {
		p.MaxLineWidth = defaultMaxLineWidth
	}
	if p.BreakThreshold <= 0 {
		p.BreakThreshold = 4 * p.LineHeight
	}
	if p.CreationDate.IsZero() {
		p.CreationDate = time.Unix(0, 0).UTC()
	}
	return p
}

// writer is implemented by every built-in strategy.
type writer interface {
	Write(w io.Writer, rows []Row) error
}

// marshal buffers a strategy's output so that a failed write yields no
// partial payload.
func marshal(s writer, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodingError(f Format, err error) error {
	if errors.Is(err, ErrEncoding) {
		return err
	}
	return fmt.Errorf("%w: format %q: %w", ErrEncoding, f, err)
}

// maxSheetNameLength is the worksheet name limit enforced by spreadsheet
// applications.
const maxSheetNameLength = 31

// ValidateDelimiter reports whether r can separate CSV fields. Quotes,
// line breaks, and non-printable runes other than tab are rejected.
func ValidateDelimiter(r rune) error {
	switch {
	case r == '"', r == '\r', r == '\n', r == utf8.RuneError, !utf8.ValidRune(r):
	case r != '\t' && !unicode.IsPrint(r):
	default:
		return nil
	}
	return fmt.Errorf("%w: CSV delimiter %q", ErrInvalidOption, r)
}

// ValidateSheetName reports whether name can title an Excel worksheet.
func ValidateSheetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: sheet name is blank", ErrInvalidOption)
	case utf8.RuneCountInString(name) > maxSheetNameLength:
		return fmt.Errorf("%w: sheet name %q exceeds %d characters", ErrInvalidOption, name, maxSheetNameLength)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("%w: sheet name %q starts or ends with a single quote", ErrInvalidOption, name)
	case strings.ContainsAny(name, `:\/?*[]`):
		return fmt.Errorf("%w: sheet name %q contains one of :\\/?*[]", ErrInvalidOption, name)
	}
	return nil
}
