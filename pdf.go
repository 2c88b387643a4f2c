//go:build !nopdf

package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

func init() {
	registerBuiltin(PDF, func(opts Options) (Generator, error) {
		g, err := NewPDFGenerator(opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}

const embeddedFamily = "report"

var pageSizes = map[string]bool{
	"a3": true, "a4": true, "a5": true, "letter": true, "legal": true,
}

// PDFGenerator renders a paginated document: a title followed by one
// fixed-format block per row.
type PDFGenerator struct {
	cfg  PageConfig
	font []byte
}

// NewPDFGenerator returns a document strategy configured from opts. It
// fails when the page geometry is invalid or the configured font file
// cannot be read.
func NewPDFGenerator(opts Options) (*PDFGenerator, error) {
	cfg := opts.withDefaults().Page
	if !pageSizes[strings.ToLower(cfg.Size)] {
		return nil, fmt.Errorf("unknown page size %q", cfg.Size)
	}
	switch strings.ToUpper(cfg.Orientation) {
	case "P", "PORTRAIT", "L", "LANDSCAPE":
	default:
		return nil, fmt.Errorf("unknown page orientation %q", cfg.Orientation)
	}
	g := &PDFGenerator{cfg: cfg}
	if cfg.FontFile != "" {
		data, err := os.ReadFile(cfg.FontFile)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		g.font = data
	}
	return g, nil
}

// Filename implements [Generator].
func (g *PDFGenerator) Filename() string { return "reporte_productos.pdf" }

// Generate implements [Generator].
func (g *PDFGenerator) Generate(rows []Row) ([]byte, error) {
	return marshal(g, rows)
}

// Write streams the document to w.
func (g *PDFGenerator) Write(w io.Writer, rows []Row) error {
	pdf := fpdf.New(g.cfg.Orientation, "mm", g.cfg.Size, "")
	pdf.SetCreationDate(g.cfg.CreationDate)
	pdf.SetModificationDate(g.cfg.CreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(g.cfg.Margin, g.cfg.Margin, g.cfg.Margin)
	pdf.SetAutoPageBreak(false, g.cfg.Margin)
	pdf.SetTitle(g.cfg.Title, true)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if g.font != nil {
		family = embeddedFamily
		pdf.AddUTF8FontFromBytes(family, "", g.font)
		pdf.AddUTF8FontFromBytes(family, "B", g.font)
		translate = func(s string) string { return s }
	}
	if pdf.Err() {
		return encodingError(PDF, pdf.Error())
	}

	_, height := pdf.GetPageSize()
	layout := pageLayout{
		height:     height,
		margin:     g.cfg.Margin,
		lineHeight: g.cfg.LineHeight,
		threshold:  g.cfg.BreakThreshold,
	}
	blocks := make([][]textLine, len(rows))
	for i, r := range rows {
		blocks[i] = rowBlock(r, g.cfg.MaxLineWidth)
	}

	// Text is drawn on a baseline; place it near the bottom of its line box.
	baseline := 0.75 * g.cfg.LineHeight
	for _, pg := range layout.paginate(g.cfg.Title, blocks) {
		pdf.AddPage()
		for _, line := range pg.lines {
			switch line.style {
			case styleTitle:
				pdf.SetFont(family, "B", g.cfg.FontSize*1.6)
			case styleBold:
				pdf.SetFont(family, "B", g.cfg.FontSize)
			default:
				pdf.SetFont(family, "", g.cfg.FontSize)
			}
			pdf.Text(g.cfg.Margin, line.y+baseline, translate(line.text))
		}
	}

	if pdf.Err() {
		return encodingError(PDF, pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return encodingError(PDF, err)
	}
	return nil
}
