//go:build !noxlsx

package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

func init() {
	registerBuiltin(Excel, func(opts Options) (Generator, error) {
		g, err := NewExcelGenerator(opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}

// The workbook carries name and price only.
var excelHeader = []any{"Nombre", "Precio"}

// ExcelGenerator writes a single-sheet workbook with a name and price
// column per row.
type ExcelGenerator struct {
	sheet string
}

// NewExcelGenerator returns a spreadsheet strategy configured from opts. It
// fails when the sheet name is not a valid worksheet name.
func NewExcelGenerator(opts Options) (*ExcelGenerator, error) {
	opts = opts.withDefaults()
	if err := ValidateSheetName(opts.SheetName); err != nil {
		return nil, err
	}
	return &ExcelGenerator{sheet: opts.SheetName}, nil
}

// Filename implements [Generator].
func (g *ExcelGenerator) Filename() string { return "reporte_productos.xlsx" }

// Generate implements [Generator].
func (g *ExcelGenerator) Generate(rows []Row) ([]byte, error) {
	return marshal(g, rows)
}

// Write streams the workbook to w.
func (g *ExcelGenerator) Write(w io.Writer, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = encodingError(Excel, cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), g.sheet); err != nil {
		return encodingError(Excel, err)
	}
	if err := f.SetSheetRow(g.sheet, "A1", &excelHeader); err != nil {
		return encodingError(Excel, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return encodingError(Excel, err)
	}
	if err := f.SetCellStyle(g.sheet, "A1", "B1", bold); err != nil {
		return encodingError(Excel, err)
	}
	if err := f.SetColWidth(g.sheet, "A", "A", 40); err != nil {
		return encodingError(Excel, err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return encodingError(Excel, err)
		}
		values := []any{r.Name, r.Price}
		if err := f.SetSheetRow(g.sheet, cell, &values); err != nil {
			return encodingError(Excel, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return encodingError(Excel, err)
	}
	return nil
}
