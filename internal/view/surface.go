package view

import (
	"errors"
	"html/template"

	"github.com/lildude/mapty/internal/model"
)

// ErrUnknownElement is returned for an element handle the surface does not
// hold.
var ErrUnknownElement = errors.New("unknown list element")

// ElementHandle identifies a rendered list entry.
type ElementHandle string

// Surface is the list and form the user interacts with.
type Surface interface {
	// InsertEntry adds an entry at the top of the list.
	InsertEntry(markup template.HTML) (ElementHandle, error)
	// ReplaceEntry swaps the entry in place and returns the new element.
	ReplaceEntry(h ElementHandle, markup template.HTML) (ElementHandle, error)
	RemoveEntry(h ElementHandle) error
	// BindEntry attaches the pan, edit and delete handlers for workoutID to
	// the element.
	BindEntry(h ElementHandle, workoutID string) error

	ShowForm(at model.Coordinates)
	// ShowEditForm opens the form filled with the current values of the
	// workout with the given id.
	ShowEditForm(id string, f model.FormData)
	HideForm()
	ToggleTypeFields(t model.WorkoutType)
	ShowError(msg string)
	ClearError()
}
