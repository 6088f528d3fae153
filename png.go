package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Pixels per canvas cell.
const (
	charWidth  = 8.0
	charHeight = 16.0
)

// ExportToPNG draws a wireframe of the canvas: labels as text, buttons as
// filled boxes, hyperlinks underlined.
func (c *Canvas) ExportToPNG(filename string) error {
	dc, err := c.renderPNG()
	if err != nil {
		return err
	}
	return dc.SavePNG(filename)
}

func (c *Canvas) renderPNG() (*gg.Context, error) {
	if len(c.elements) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}

	first := c.elements[0]
	minX, minY := first.Position.Left, first.Position.Top
	maxX, maxY := minX, minY
	for _, el := range c.elements {
		w, h := widgetSize(el)
		minX = min(minX, el.Position.Left)
		minY = min(minY, el.Position.Top)
		maxX = max(maxX, el.Position.Left+w)
		maxY = max(maxY, el.Position.Top+h)
	}

	padding := 2
	minX -= padding
	minY -= padding
	maxX += padding
	maxY += padding

	dc := gg.NewContext(int(float64(maxX-minX)*charWidth), int(float64(maxY-minY)*charHeight))
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, el := range c.elements {
		drawElementPNG(dc, el, minX, minY)
	}
	return dc, nil
}

func drawElementPNG(dc *gg.Context, el Element, minX, minY int) {
	x := float64(el.Position.Left-minX) * charWidth
	y := float64(el.Position.Top-minY) * charHeight
	w, h := widgetSize(el)
	width := float64(w) * charWidth
	height := float64(h) * charHeight

	switch el.Type {
	case Button:
		dc.DrawRoundedRectangle(x, y, width, height, 4)
		setPNGColor(dc, el.Style[StyleBackgroundColor], color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 0xff})
		dc.FillPreserve()
		dc.SetLineWidth(1)
		dc.SetColor(color.Black)
		dc.Stroke()
		setPNGColor(dc, el.Style[StyleColor], color.White)
		dc.DrawStringAnchored(el.Text, x+width/2, y+height/2, 0.5, 0.35)
	case Hyperlink:
		setPNGColor(dc, el.Style[StyleColor], color.RGBA{B: 0xcc, A: 0xff})
		dc.DrawString(el.Text, x+charWidth, y+charHeight-3)
		tw, _ := dc.MeasureString(el.Text)
		dc.SetLineWidth(1)
		dc.DrawLine(x+charWidth, y+charHeight-1, x+charWidth+tw, y+charHeight-1)
		dc.Stroke()
	default:
		setPNGColor(dc, el.Style[StyleColor], color.Black)
		dc.DrawString(el.Text, x, y+charHeight-3)
	}
}

// setPNGColor accepts hex colors ("#ff0000", "f00"); anything else, such
// as theme tokens like "blue.900", falls back.
func setPNGColor(dc *gg.Context, value string, fallback color.Color) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3, 6, 8:
		if strings.Trim(strings.ToLower(v), "0123456789abcdef") == "" {
			dc.SetHexColor(v)
			return
		}
	}
	dc.SetColor(fallback)
}
