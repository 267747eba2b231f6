package view

import (
	"errors"
	"fmt"

	"github.com/lildude/mapty/internal/markers"
	"github.com/lildude/mapty/internal/model"
	"github.com/sirupsen/logrus"
)

// Synchronizer applies each store mutation to the list surface and the
// marker registry in a fixed order. It tracks the element rendered for each
// workout and binds handlers once per element.
type Synchronizer struct {
	surface  Surface
	registry *markers.Registry
	log      logrus.FieldLogger

	elements map[string]ElementHandle
	bound    map[ElementHandle]bool
}

func NewSynchronizer(surface Surface, registry *markers.Registry, log logrus.FieldLogger) *Synchronizer {
	return &Synchronizer{
		surface:  surface,
		registry: registry,
		log:      log,
		elements: make(map[string]ElementHandle),
		bound:    make(map[ElementHandle]bool),
	}
}

// OnCreate renders w's entry, adds its marker, hides the form and binds the
// new entry. If the marker cannot be added or the entry cannot be bound, the
// entry and marker are removed again.
func (s *Synchronizer) OnCreate(w model.Workout) error {
	h, err := s.render(w)
	if err != nil {
		return err
	}
	if _, err := s.registry.Add(w.ID, w.Coordinates, markers.PopupFor(w)); err != nil {
		s.discard(w.ID)
		return err
	}
	s.surface.HideForm()
	if err := s.bind(h, w.ID); err != nil {
		s.discard(w.ID)
		if rerr := s.registry.Remove(w.ID); rerr != nil {
			s.log.WithError(rerr).WithField("workout_id", w.ID).Error("unable to remove marker")
		}
		return err
	}
	return nil
}

// OnEdit replaces before's entry with after's, then rebinds the popup when
// the type changed.
func (s *Synchronizer) OnEdit(before, after model.Workout) error {
	old, ok := s.elements[after.ID]
	if !ok {
		return fmt.Errorf("replacing entry for %s: %w", after.ID, model.ErrNotFound)
	}
	markup, err := RenderEntry(after)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", after.ID, err)
	}
	h, err := s.surface.ReplaceEntry(old, markup)
	if err != nil {
		return err
	}
	delete(s.bound, old)
	s.elements[after.ID] = h
	if before.Type != after.Type {
		if err := s.registry.UpdatePopup(after.ID, markers.PopupFor(after)); err != nil {
			return err
		}
	}
	return s.bind(h, after.ID)
}

// OnDelete removes id's entry and then its marker.
func (s *Synchronizer) OnDelete(id string) error {
	var errs []error
	if h, ok := s.elements[id]; ok {
		if err := s.surface.RemoveEntry(h); err != nil {
			errs = append(errs, err)
		}
		delete(s.elements, id)
		delete(s.bound, h)
	}
	if err := s.registry.Remove(id); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// OnLoad renders an entry and a marker for every workout in collection
// order. Failures are collected and the rest still render.
func (s *Synchronizer) OnLoad(ws []model.Workout) error {
	var errs []error
	for _, w := range ws {
		h, err := s.render(w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := s.registry.Add(w.ID, w.Coordinates, markers.PopupFor(w)); err != nil {
			errs = append(errs, err)
		}
		if err := s.bind(h, w.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnMapReady adds the markers that could not be drawn before the map was
// attached.
func (s *Synchronizer) OnMapReady(ws []model.Workout) error {
	var errs []error
	for _, w := range ws {
		if s.registry.Has(w.ID) {
			continue
		}
		if _, err := s.registry.Add(w.ID, w.Coordinates, markers.PopupFor(w)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnReset removes every entry and marker for ws.
func (s *Synchronizer) OnReset(ws []model.Workout) error {
	var errs []error
	for _, w := range ws {
		if err := s.OnDelete(w.ID); err != nil {
			errs = append(errs, err)
		}
	}
	s.surface.HideForm()
	s.surface.ClearError()
	return errors.Join(errs...)
}

// Element returns the list element rendered for id.
func (s *Synchronizer) Element(id string) (ElementHandle, bool) {
	h, ok := s.elements[id]
	return h, ok
}

func (s *Synchronizer) render(w model.Workout) (ElementHandle, error) {
	if _, ok := s.elements[w.ID]; ok {
		return "", fmt.Errorf("rendering %s: entry already exists", w.ID)
	}
	markup, err := RenderEntry(w)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", w.ID, err)
	}
	h, err := s.surface.InsertEntry(markup)
	if err != nil {
		return "", err
	}
	s.elements[w.ID] = h
	return h, nil
}

func (s *Synchronizer) discard(id string) {
	h, ok := s.elements[id]
	if !ok {
		return
	}
	if err := s.surface.RemoveEntry(h); err != nil {
		s.log.WithError(err).WithField("workout_id", id).Error("unable to remove entry")
	}
	delete(s.elements, id)
	delete(s.bound, h)
}

func (s *Synchronizer) bind(h ElementHandle, id string) error {
	if s.bound[h] {
		return nil
	}
	if err := s.surface.BindEntry(h, id); err != nil {
		return err
	}
	s.bound[h] = true
	return nil
}
