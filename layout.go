package report

import "fmt"

type lineStyle int

const (
	styleNormal lineStyle = iota
	styleBold
	styleTitle
)

type textLine struct {
	text  string
	style lineStyle
}

// placedLine is a text line positioned on a page. y is the top of the line.
// block is the index of the row the line belongs to, or -1 for the title.
type placedLine struct {
	textLine
	y     float64
	block int
}

type page struct {
	lines []placedLine
}

// pageLayout holds the vertical geometry used to paginate a document.
type pageLayout struct {
	height     float64
	margin     float64
	lineHeight float64
	threshold  float64
}

func (l pageLayout) titleHeight() float64 { return 2 * l.lineHeight }
func (l pageLayout) blockGap() float64    { return l.lineHeight / 2 }

// rowBlock renders one row into its fixed-format lines.
func rowBlock(r Row, wrapWidth int) []textLine {
	lines := []textLine{{
		text:  fmt.Sprintf("%s - $%s", r.Name, FormatPrice(r.Price)),
		style: styleBold,
	}}
	for _, s := range wrapText(r.Description, wrapWidth) {
		lines = append(lines, textLine{text: s})
	}
	lines = append(lines,
		textLine{text: fmt.Sprintf("Categoría: %s | Material: %s | Color: %s", r.Category, r.Material, r.Color)},
		textLine{text: fmt.Sprintf("Stock: %d | Vendedor: %s | Creado: %s", r.Stock, r.SellerID, FormatTime(r.CreatedAt))},
	)
	return lines
}

// paginate places the title and every block on pages. A block moves to a
// fresh page when the space left is below the threshold or below the
// block's height. Only a block taller than an empty page is split.
func (l pageLayout) paginate(title string, blocks [][]textLine) []page {
	top := l.margin
	bottom := l.height - l.margin

	pages := []page{{}}
	cur := &pages[0]
	y := top
	newPage := func() {
		pages = append(pages, page{})
		cur = &pages[len(pages)-1]
		y = top
	}

	cur.lines = append(cur.lines, placedLine{
		textLine: textLine{text: title, style: styleTitle},
		y:        y,
		block:    -1,
	})
	y += l.titleHeight()

	for i, block := range blocks {
		height := float64(len(block)) * l.lineHeight
		remaining := bottom - y
		if len(cur.lines) > 0 && (remaining < l.threshold || remaining < height) {
			newPage()
		}
		for _, line := range block {
			if y+l.lineHeight > bottom && y > top {
				newPage()
			}
			cur.lines = append(cur.lines, placedLine{textLine: line, y: y, block: i})
			y += l.lineHeight
		}
		y += l.blockGap()
	}
	return pages
}
