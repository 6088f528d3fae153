package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDropCreates(t *testing.T) {
	r := NewRegistry()

	res, err := HandleDrop(r, DefaultTheme(), DropPayload{Type: "Button", Position: &Position{Top: 3, Left: 8}})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.Moved)
	assert.Equal(t, Position{Top: 3, Left: 8}, res.Element.Position)
	assert.Equal(t, "blue.900", res.Element.Style[StyleBackgroundColor])

	res, err = HandleDrop(r, DefaultTheme(), DropPayload{Type: "Label"})
	require.NoError(t, err)
	assert.Equal(t, PalettePosition, res.Element.Position)
	assert.Equal(t, 2, r.Len())
}

func TestHandleDropUsesTheme(t *testing.T) {
	r := NewRegistry()
	theme := Theme{TextColor: "#333", ButtonColor: "#fff", ButtonBackground: "#0a0"}

	res, err := HandleDrop(r, theme, DropPayload{Type: "hyperlink"})
	require.NoError(t, err)
	assert.Equal(t, "#333", res.Element.Style[StyleColor])
}

func TestHandleDropUnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := HandleDrop(r, DefaultTheme(), DropPayload{Type: "Image"})
	assert.True(t, errors.Is(err, ErrInvalidElementType), "got %v", err)
	assert.Equal(t, 0, r.Len())
}

func TestHandleDropRelocates(t *testing.T) {
	r := NewRegistry()
	el := mustCreate(t, r, Label, Position{Top: 1, Left: 1})

	res, err := HandleDrop(r, DefaultTheme(), DropPayload{
		ID:           el.ID,
		Type:         "Label",
		Position:     &Position{Top: 6, Left: 2},
		IsRelocation: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, 1, r.Len())

	got, _ := r.FindByID(el.ID)
	want := Relocate(el, Position{Top: 6, Left: 2})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("relocation mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleDropRelocationNoOps(t *testing.T) {
	r := NewRegistry()
	el := mustCreate(t, r, Label, Position{Top: 1, Left: 1})
	before := r.Elements()

	tests := []struct {
		name string
		p    DropPayload
	}{
		{"unknown id", DropPayload{ID: "ghost", Position: &Position{Top: 2}, IsRelocation: true}},
		{"missing position", DropPayload{ID: el.ID, IsRelocation: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := HandleDrop(r, DefaultTheme(), tt.p)
			require.NoError(t, err)
			assert.False(t, res.Created)
			assert.False(t, res.Moved)
			if diff := cmp.Diff(before, r.Elements()); diff != "" {
				t.Errorf("registry changed (-want +got):\n%s", diff)
			}
		})
	}
}
