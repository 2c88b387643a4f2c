package report

import (
	"encoding/json"
	"io"
)

// JSONGenerator writes the rows as an array of field-keyed objects.
type JSONGenerator struct {
	indent  string
	compact bool
}

// NewJSONGenerator returns a JSON strategy configured from opts.
func NewJSONGenerator(opts Options) *JSONGenerator {
	opts = opts.withDefaults()
	return &JSONGenerator{indent: opts.Indent, compact: opts.Compact}
}

// Filename implements [Generator].
func (g *JSONGenerator) Filename() string { return "productos_report.json" }

// Generate implements [Generator].
func (g *JSONGenerator) Generate(rows []Row) ([]byte, error) {
	return marshal(g, rows)
}

// jsonRow fixes the key order and the timestamp representation.
type jsonRow struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Material    string  `json:"material"`
	Color       string  `json:"color"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"created_at"`
	SellerID    string  `json:"seller_id"`
}

// Write streams the report to w.
func (g *JSONGenerator) Write(w io.Writer, rows []Row) error {
	out := make([]jsonRow, len(rows))
	for i, r := range rows {
		out[i] = jsonRow{
			Name:        r.Name,
			Price:       r.Price,
			Description: r.Description,
			Category:    r.Category,
			Material:    r.Material,
			Color:       r.Color,
			Stock:       r.Stock,
			CreatedAt:   FormatTime(r.CreatedAt),
			SellerID:    r.SellerID,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !g.compact {
		enc.SetIndent("", g.indent)
	}
	if err := enc.Encode(out); err != nil {
		return encodingError(JSON, err)
	}
	return nil
}
