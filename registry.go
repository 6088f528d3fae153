package main

import (
	"errors"
	"fmt"
)

var ErrDuplicateID = errors.New("duplicate element id")

// Registry is the single owner of all live elements. Append order is the
// order used for rendering and export, and updates never change it.
//
// A Registry is not safe for concurrent use; hosts with more than one
// writer serialize access (see server.go).
type Registry struct {
	elements []Element
	revision uint64
}

func NewRegistry() *Registry {
	return &Registry{
		elements: make([]Element, 0),
	}
}

func (r *Registry) Add(el Element) error {
	if !el.Type.Valid() {
		return fmt.Errorf("add element %s: %w", el.ID, ErrInvalidElementType)
	}
	if r.indexOf(el.ID) >= 0 {
		return fmt.Errorf("add element %s: %w", el.ID, ErrDuplicateID)
	}
	r.elements = append(r.elements, el.Clone())
	r.revision++
	return nil
}

// FindByID returns a copy of the stored element. A missing id is a normal
// outcome (stale selection), reported through the bool.
func (r *Registry) FindByID(id ElementID) (Element, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return Element{}, false
	}
	return r.elements[i].Clone(), true
}

// UpdateByID applies UpdateField to the element with the given id and
// stores the result in the same slot. It reports whether a change was
// stored; a missing id or a rejected value is a no-op.
func (r *Registry) UpdateByID(id ElementID, field, value string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	updated, ok := UpdateField(r.elements[i], field, value)
	if !ok {
		return false
	}
	r.elements[i] = updated
	r.revision++
	return true
}

func (r *Registry) RelocateByID(id ElementID, pos Position) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.elements[i] = Relocate(r.elements[i], pos)
	r.revision++
	return true
}

// restore puts a previous version of an element back in its slot. Used by
// undo/redo; the type of the stored element is never changed.
func (r *Registry) restore(el Element) bool {
	i := r.indexOf(el.ID)
	if i < 0 || r.elements[i].Type != el.Type {
		return false
	}
	r.elements[i] = el.Clone()
	r.revision++
	return true
}

// Elements returns a deep copy of the registry in append order.
func (r *Registry) Elements() []Element {
	out := make([]Element, len(r.elements))
	for i, el := range r.elements {
		out[i] = el.Clone()
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.elements)
}

// Revision increases on every stored mutation. Two equal revisions mean
// an identical snapshot.
func (r *Registry) Revision() uint64 {
	return r.revision
}

func (r *Registry) indexOf(id ElementID) int {
	for i := range r.elements {
		if r.elements[i].ID == id {
			return i
		}
	}
	return -1
}
