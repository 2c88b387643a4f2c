package report

import (
	"encoding/csv"
	"io"
)

// CSVGenerator writes a header line followed by one line per row.
type CSVGenerator struct {
	columns   []string
	delimiter rune
}

// NewCSVGenerator returns a CSV strategy configured from opts. It fails
// when the delimiter cannot separate fields.
func NewCSVGenerator(opts Options) (*CSVGenerator, error) {
	opts = opts.withDefaults()
	if err := ValidateDelimiter(opts.Delimiter); err != nil {
		return nil, err
	}
	return &CSVGenerator{columns: opts.Columns, delimiter: opts.Delimiter}, nil
}

// Filename implements [Generator].
func (g *CSVGenerator) Filename() string { return "productos_report.csv" }

// Generate implements [Generator].
func (g *CSVGenerator) Generate(rows []Row) ([]byte, error) {
	return marshal(g, rows)
}

// Write streams the report to w.
func (g *CSVGenerator) Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = g.delimiter
	if err := cw.Write(g.columns); err != nil {
		return encodingError(CSV, err)
	}
	record := make([]string, len(g.columns))
	for _, r := range rows {
		for i, col := range g.columns {
			record[i] = r.Text(col)
		}
		if err := cw.Write(record); err != nil {
			return encodingError(CSV, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return encodingError(CSV, err)
	}
	return nil
}
