package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidElementType is returned when a caller asks for a widget kind
// outside the closed Label/Button/Hyperlink set.
var ErrInvalidElementType = errors.New("invalid element type")

type ElementType int

const (
	Label ElementType = iota + 1
	Button
	Hyperlink
)

var elementTypes = []ElementType{Label, Button, Hyperlink}

func (t ElementType) String() string {
	switch t {
	case Label:
		return "Label"
	case Button:
		return "Button"
	case Hyperlink:
		return "Hyperlink"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

func (t ElementType) Valid() bool {
	switch t {
	case Label, Button, Hyperlink:
		return true
	}
	return false
}

// Tag is the lowercased type name used as tag, class and variable stem
// by the export pipeline.
func (t ElementType) Tag() string {
	return strings.ToLower(t.String())
}

func (t ElementType) defaultText() string {
	switch t {
	case Label:
		return "Label Text"
	case Button:
		return "Button Text"
	case Hyperlink:
		return "Link Text"
	}
	return ""
}

func ParseElementType(s string) (ElementType, error) {
	for _, t := range elementTypes {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidElementType, s)
}

func (t ElementType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidElementType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *ElementType) UnmarshalText(b []byte) error {
	parsed, err := ParseElementType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type ElementID string

func newElementID() ElementID {
	id, err := uuid.NewV7()
	if err != nil {
		return ElementID(uuid.NewString())
	}
	return ElementID(id.String())
}

type Position struct {
	Top  int `json:"top" yaml:"top"`
	Left int `json:"left" yaml:"left"`
}

// Recognized style keys.
const (
	StyleFontSize        = "fontSize"
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StyleMarginTop       = "marginTop"
)

// Editable top-level fields.
const (
	FieldText = "text"
	FieldURL  = "url"
)

// Style holds only the keys that have been set; an unset key is absent.
type Style map[string]string

func (s Style) clone() Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Element is one placed widget. The four style fields at the top level
// mirror the Style map: every style write lands in both.
type Element struct {
	ID              ElementID   `json:"id" yaml:"id"`
	Type            ElementType `json:"type" yaml:"type"`
	Position        Position    `json:"position" yaml:"position"`
	Text            string      `json:"text" yaml:"text"`
	URL             string      `json:"url,omitempty" yaml:"url,omitempty"`
	FontSize        string      `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	Color           string      `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	MarginTop       string      `json:"marginTop,omitempty" yaml:"marginTop,omitempty"`
	Style           Style       `json:"style" yaml:"style"`
}

// Clone returns a copy that shares no mutable state with e.
func (e Element) Clone() Element {
	e.Style = e.Style.clone()
	return e
}

// sameAs reports whether two elements hold identical values.
func (e Element) sameAs(o Element) bool {
	if len(e.Style) != len(o.Style) {
		return false
	}
	for k, v := range e.Style {
		if w, ok := o.Style[k]; !ok || w != v {
			return false
		}
	}
	return e.ID == o.ID && e.Type == o.Type && e.Position == o.Position &&
		e.Text == o.Text && e.URL == o.URL &&
		e.FontSize == o.FontSize && e.Color == o.Color &&
		e.BackgroundColor == o.BackgroundColor && e.MarginTop == o.MarginTop
}

type Theme struct {
	TextColor        string
	ButtonColor      string
	ButtonBackground string
}

func DefaultTheme() Theme {
	return Theme{
		TextColor:        "black",
		ButtonColor:      "white",
		ButtonBackground: "blue.900",
	}
}

const defaultFontSize = "16px"

// CreateElement builds a widget with the default theme.
func CreateElement(t ElementType, pos Position) (Element, error) {
	return NewElement(t, pos, DefaultTheme())
}

func NewElement(t ElementType, pos Position, theme Theme) (Element, error) {
	if !t.Valid() {
		return Element{}, fmt.Errorf("create element: %w: %d", ErrInvalidElementType, int(t))
	}

	el := Element{
		ID:       newElementID(),
		Type:     t,
		Position: pos,
		Text:     t.defaultText(),
		Style:    Style{},
	}
	el.setStyle(StyleFontSize, defaultFontSize)
	if t == Button {
		el.setStyle(StyleColor, theme.ButtonColor)
		el.setStyle(StyleBackgroundColor, theme.ButtonBackground)
	} else {
		el.setStyle(StyleColor, theme.TextColor)
	}
	return el, nil
}

func (e *Element) setStyle(key, value string) {
	e.Style[key] = value
	switch key {
	case StyleFontSize:
		e.FontSize = value
	case StyleColor:
		e.Color = value
	case StyleBackgroundColor:
		e.BackgroundColor = value
	case StyleMarginTop:
		e.MarginTop = value
	}
}

// UpdateField returns a copy of e with exactly one field changed. Unknown
// fields, fields that do not apply to e's type, and unparseable lengths
// leave the copy identical to e; the bool reports whether anything was
// written.
func UpdateField(e Element, field, value string) (Element, bool) {
	out := e.Clone()
	if out.Style == nil {
		out.Style = Style{}
	}

	switch field {
	case FieldText:
		out.Text = value
	case FieldURL:
		if e.Type != Hyperlink {
			return out, false
		}
		out.URL = value
	case StyleColor:
		out.setStyle(field, value)
	case StyleBackgroundColor:
		if e.Type != Button {
			return out, false
		}
		out.setStyle(field, value)
	case StyleFontSize, StyleMarginTop:
		length, ok := NormalizeLength(value)
		if !ok {
			return out, false
		}
		out.setStyle(field, length)
	default:
		return out, false
	}
	return out, true
}

// Relocate returns a copy of e at pos.
func Relocate(e Element, pos Position) Element {
	out := e.Clone()
	out.Position = pos
	return out
}

const lengthUnit = "px"

// NormalizeLength turns "18", "18px" or " 18.50px " into the stored "18px"
// form. It is idempotent.
func NormalizeLength(raw string) (string, bool) {
	n, ok := parseLength(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + lengthUnit, true
}

// BareLength strips the unit for display; "18px" becomes "18".
func BareLength(stored string) string {
	n, ok := parseLength(stored)
	if !ok {
		return strings.TrimSpace(stored)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func parseLength(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, lengthUnit))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
