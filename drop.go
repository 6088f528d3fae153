package main

import "fmt"

// PalettePosition is where palette clicks place new widgets.
var PalettePosition = Position{Top: 0, Left: 0}

// DropPayload is what the drag layer delivers when a drop completes.
// Palette drags carry only a type; canvas drags carry the dragged
// element's id and set IsRelocation.
type DropPayload struct {
	ID           ElementID `json:"id,omitempty"`
	Type         string    `json:"type"`
	Position     *Position `json:"position,omitempty"`
	IsRelocation bool      `json:"isRelocation"`
}

type DropResult struct {
	Element Element `json:"element"`
	Created bool    `json:"created"`
	Moved   bool    `json:"moved"`
}

// HandleDrop routes a drop: relocations move an existing element, anything
// else creates a new element at the drop site. Relocating an unknown id, or
// a relocation without a position, is a no-op.
func HandleDrop(r *Registry, theme Theme, p DropPayload) (DropResult, error) {
	if p.IsRelocation {
		if p.Position == nil || !r.RelocateByID(p.ID, *p.Position) {
			return DropResult{}, nil
		}
		el, _ := r.FindByID(p.ID)
		return DropResult{Element: el, Moved: true}, nil
	}

	t, err := ParseElementType(p.Type)
	if err != nil {
		return DropResult{}, fmt.Errorf("drop: %w", err)
	}
	pos := PalettePosition
	if p.Position != nil {
		pos = *p.Position
	}
	el, err := NewElement(t, pos, theme)
	if err != nil {
		return DropResult{}, fmt.Errorf("drop: %w", err)
	}
	if err := r.Add(el); err != nil {
		return DropResult{}, fmt.Errorf("drop: %w", err)
	}
	return DropResult{Element: el, Created: true}, nil
}
