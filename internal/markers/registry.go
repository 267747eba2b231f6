// Package markers tracks the map marker drawn for each workout.
package markers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lildude/mapty/internal/mapping"
	"github.com/lildude/mapty/internal/model"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyRegistered is returned when a workout already has a marker.
var ErrAlreadyRegistered = errors.New("marker already registered")

// Popup is the content and style class of a marker popup.
type Popup struct {
	Content string
	Style   string
}

// PopupFor returns the popup shown on w's marker.
func PopupFor(w model.Workout) Popup {
	return Popup{
		Content: fmt.Sprintf("%s %s", w.Type.Icon(), w.Label),
		Style:   fmt.Sprintf("%s-popup", w.Type),
	}
}

// Registry maps workout ids to marker handles. Until a map is attached every
// operation is a no-op and no markers exist.
type Registry struct {
	provider mapping.Provider
	log      logrus.FieldLogger

	mapHandle mapping.MapHandle
	handles   map[string]mapping.MarkerHandle
}

func New(provider mapping.Provider, log logrus.FieldLogger) *Registry {
	return &Registry{
		provider: provider,
		log:      log,
		handles:  make(map[string]mapping.MarkerHandle),
	}
}

// Attach makes the registry use the initialized map h.
func (r *Registry) Attach(h mapping.MapHandle) {
	r.mapHandle = h
}

// Ready reports whether a map has been attached.
func (r *Registry) Ready() bool {
	return r.mapHandle != ""
}

// Add places a marker for id at the given location with an open popup.
func (r *Registry) Add(id string, at model.Coordinates, p Popup) (mapping.MarkerHandle, error) {
	if !r.Ready() {
		r.log.WithField("workout_id", id).Debug("map not ready, skipping marker")
		return "", nil
	}
	if _, ok := r.handles[id]; ok {
		return "", fmt.Errorf("adding marker for %s: %w", id, ErrAlreadyRegistered)
	}

	mk, err := r.provider.AddMarker(r.mapHandle, at)
	if err != nil {
		return "", fmt.Errorf("adding marker for %s: %w", id, err)
	}
	if err := r.provider.BindPopup(mk, p.Content, p.Style); err != nil {
		if rmErr := r.provider.RemoveMarker(r.mapHandle, mk); rmErr != nil {
			r.log.WithError(rmErr).WithField("workout_id", id).Error("unable to remove half-added marker")
		}
		return "", fmt.Errorf("binding popup for %s: %w", id, err)
	}

	r.handles[id] = mk
	return mk, nil
}

// UpdatePopup rebinds the popup on id's marker.
func (r *Registry) UpdatePopup(id string, p Popup) error {
	if !r.Ready() {
		return nil
	}
	mk, ok := r.handles[id]
	if !ok {
		return fmt.Errorf("updating popup for %s: %w", id, model.ErrNotFound)
	}
	if err := r.provider.BindPopup(mk, p.Content, p.Style); err != nil {
		return fmt.Errorf("updating popup for %s: %w", id, err)
	}
	return nil
}

// Remove takes id's marker off the map.
func (r *Registry) Remove(id string) error {
	if !r.Ready() {
		return nil
	}
	mk, ok := r.handles[id]
	if !ok {
		return fmt.Errorf("removing marker for %s: %w", id, model.ErrNotFound)
	}
	if err := r.provider.RemoveMarker(r.mapHandle, mk); err != nil {
		return fmt.Errorf("removing marker for %s: %w", id, err)
	}
	delete(r.handles, id)
	return nil
}

// PanTo centres the map on at. It does nothing before a map is attached.
func (r *Registry) PanTo(at model.Coordinates, zoom int) error {
	if !r.Ready() {
		return nil
	}
	return r.provider.PanTo(r.mapHandle, at, zoom)
}

// Has reports whether id has a marker.
func (r *Registry) Has(id string) bool {
	_, ok := r.handles[id]
	return ok
}

// Handle returns the marker handle registered for id.
func (r *Registry) Handle(id string) (mapping.MarkerHandle, bool) {
	mk, ok := r.handles[id]
	return mk, ok
}

// IDs returns the registered workout ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	return len(r.handles)
}
