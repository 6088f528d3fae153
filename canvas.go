package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wideTail fills the grid cell covered by the right half of a
// double-width rune. It is dropped when rows are joined.
const wideTail = rune(0)

// Canvas renders a registry snapshot onto a rune grid. Positions map
// directly onto cells: Top is the row, Left the column.
type Canvas struct {
	elements []Element
}

func NewCanvas(elements []Element) *Canvas {
	return &Canvas{elements: elements}
}

// widgetSize is the footprint of an element in terminal cells.
func widgetSize(el Element) (int, int) {
	n := runewidth.StringWidth(el.Text)
	switch el.Type {
	case Button:
		return max(n, 1) + 4, 3
	case Hyperlink:
		return n + 2, 1
	default:
		return max(n, 1), 1
	}
}

func contains(el Element, x, y int) bool {
	w, h := widgetSize(el)
	return x >= el.Position.Left && x < el.Position.Left+w &&
		y >= el.Position.Top && y < el.Position.Top+h
}

// ElementAt returns the topmost element covering the cell. Later elements
// are drawn over earlier ones, so the search runs backwards.
func (c *Canvas) ElementAt(x, y int) (Element, bool) {
	for i := len(c.elements) - 1; i >= 0; i-- {
		if contains(c.elements[i], x, y) {
			return c.elements[i], true
		}
	}
	return Element{}, false
}

type renderOptions struct {
	panX, panY int
	selected   ElementID
	ghost      *Element
	// hint is centred on an otherwise empty canvas.
	hint       string
	showCursor bool
	cursorX    int
	cursorY    int
}

func (c *Canvas) Render(width, height int, opts renderOptions) []string {
	if height < 1 {
		height = 1
	}
	if width < 1 {
		width = 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for _, el := range c.elements {
		if opts.ghost != nil && el.ID == opts.ghost.ID {
			continue
		}
		c.drawWidgetAt(grid, el, el.ID == opts.selected, el.Position.Left-opts.panX, el.Position.Top-opts.panY)
	}
	if g := opts.ghost; g != nil {
		c.drawWidgetAt(grid, *g, true, g.Position.Left-opts.panX, g.Position.Top-opts.panY)
	}
	if len(c.elements) == 0 && opts.hint != "" && height > 2 {
		drawRow(grid, max((width-runewidth.StringWidth(opts.hint))/2, 0), height/2, opts.hint)
	}
	if opts.showCursor {
		drawRow(grid, opts.cursorX, opts.cursorY, "█")
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = joinCells(row)
	}
	return lines
}

func (c *Canvas) drawWidgetAt(grid [][]rune, el Element, isSelected bool, x, y int) {
	switch el.Type {
	case Button:
		c.drawButtonAt(grid, el, isSelected, x, y)
	case Hyperlink:
		left, right := "[", "]"
		if isSelected {
			left, right = "#", "#"
		}
		drawRow(grid, x, y, left+el.Text+right)
	default:
		text := el.Text
		if text == "" {
			text = "·"
		}
		if isSelected {
			drawRow(grid, x-1, y, "#")
		}
		drawRow(grid, x, y, text)
	}
}

func (c *Canvas) drawButtonAt(grid [][]rune, el Element, isSelected bool, x, y int) {
	var corner, horizontal, vertical rune
	if isSelected {
		corner, horizontal, vertical = '#', '#', '#'
	} else {
		corner, horizontal, vertical = '+', '-', '|'
	}

	w, _ := widgetSize(el)
	edge := string(corner) + strings.Repeat(string(horizontal), w-2) + string(corner)
	inner := string(vertical) + " " + padRight(el.Text, w-4) + " " + string(vertical)
	drawRow(grid, x, y, edge)
	drawRow(grid, x, y+1, inner)
	drawRow(grid, x, y+2, edge)
}

func drawRow(grid [][]rune, x, y int, s string) {
	if y < 0 || y >= len(grid) {
		return
	}
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= len(grid[y]) {
			clearCell(grid[y], col)
			grid[y][col] = r
			if w == 2 {
				clearCell(grid[y], col+1)
				grid[y][col+1] = wideTail
			}
		}
		col += w
	}
}

// clearCell blanks the other half of any wide rune that overlaps col.
func clearCell(row []rune, col int) {
	if row[col] == wideTail && col > 0 {
		row[col-1] = ' '
	}
	if col+1 < len(row) && row[col+1] == wideTail {
		row[col+1] = ' '
	}
}

func joinCells(row []rune) string {
	var b strings.Builder
	for _, r := range row {
		if r != wideTail {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func padRight(s string, n int) string {
	if l := runewidth.StringWidth(s); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}
