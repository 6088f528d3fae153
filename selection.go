package main

// Defaults shown by the editing surface when the element has no value.
const (
	displayFontSize  = "16"
	displayMarginTop = "3"
)

// SelectionView is the flat, always-populated record an editing surface
// binds to. Lengths are bare numbers ("18"), not stored forms ("18px").
type SelectionView struct {
	ID              ElementID   `json:"id"`
	Type            ElementType `json:"type,omitempty"`
	Selected        bool        `json:"selected"`
	Text            string      `json:"text"`
	URL             string      `json:"url"`
	FontSize        string      `json:"fontSize"`
	Color           string      `json:"color"`
	BackgroundColor string      `json:"backgroundColor"`
	MarginTop       string      `json:"marginTop"`
}

func emptySelection() SelectionView {
	return SelectionView{
		FontSize:  displayFontSize,
		MarginTop: displayMarginTop,
	}
}

func newSelectionView(el Element) SelectionView {
	v := emptySelection()
	v.ID = el.ID
	v.Type = el.Type
	v.Selected = true
	v.Text = el.Text
	v.URL = el.URL
	v.Color = el.Style[StyleColor]
	v.BackgroundColor = el.Style[StyleBackgroundColor]
	if fs := el.Style[StyleFontSize]; fs != "" {
		v.FontSize = BareLength(fs)
	}
	if mt := el.Style[StyleMarginTop]; mt != "" {
		v.MarginTop = BareLength(mt)
	}
	return v
}

// Get returns the display value of an editable property.
func (v SelectionView) Get(property string) string {
	switch property {
	case FieldText:
		return v.Text
	case FieldURL:
		return v.URL
	case StyleFontSize:
		return v.FontSize
	case StyleColor:
		return v.Color
	case StyleBackgroundColor:
		return v.BackgroundColor
	case StyleMarginTop:
		return v.MarginTop
	}
	return ""
}

// EditableProperties lists the properties the editing surface offers for
// an element type, in display order.
func EditableProperties(t ElementType) []string {
	props := []string{FieldText, StyleFontSize, StyleMarginTop, StyleColor}
	switch t {
	case Button:
		props = append(props, StyleBackgroundColor)
	case Hyperlink:
		props = append(props, FieldURL)
	}
	return props
}

// Bridge maps a selected element to its SelectionView and funnels edits
// back into the registry.
type Bridge struct {
	registry *Registry
	selected ElementID
	view     SelectionView
}

func NewBridge(r *Registry) *Bridge {
	return &Bridge{
		registry: r,
		view:     emptySelection(),
	}
}

// Select replaces the current view entirely. An unknown or empty id
// yields the default view.
func (b *Bridge) Select(id ElementID) SelectionView {
	b.selected = ""
	b.view = emptySelection()
	if el, ok := b.registry.FindByID(id); ok {
		b.selected = id
		b.view = newSelectionView(el)
	}
	return b.view
}

func (b *Bridge) Clear() SelectionView {
	return b.Select("")
}

func (b *Bridge) Selected() (ElementID, bool) {
	return b.selected, b.selected != ""
}

// View re-reads the selected element so the view reflects the latest
// registry state.
func (b *Bridge) View() SelectionView {
	return b.Select(b.selected)
}

// ApplyEdit normalizes rawValue and stores it through the registry.
// Length properties accept "18" or "18px" and are stored as "18px";
// unparseable lengths are dropped and the prior value kept. It reports
// whether the registry changed.
func (b *Bridge) ApplyEdit(id ElementID, property, rawValue string) bool {
	value := rawValue
	if isLengthProperty(property) {
		n, ok := NormalizeLength(rawValue)
		if !ok {
			return false
		}
		value = n
	}

	applied := b.registry.UpdateByID(id, property, value)
	if applied && id == b.selected {
		b.View()
	}
	return applied
}

func isLengthProperty(property string) bool {
	return property == StyleFontSize || property == StyleMarginTop
}
