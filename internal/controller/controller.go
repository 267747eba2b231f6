// Package controller turns user events (map clicks, form submissions, list
// actions) into store mutations followed by the matching view and marker
// updates.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lildude/mapty/internal/mapping"
	"github.com/lildude/mapty/internal/markers"
	"github.com/lildude/mapty/internal/metrics"
	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/view"
	"github.com/lildude/mapty/internal/workouts"
	"github.com/sirupsen/logrus"
)

// DefaultZoom is the zoom level the map opens and pans at.
const DefaultZoom = 13

// ErrSync is returned when the list or the map could not be brought in line
// with a store mutation. The mutation has been undone.
var ErrSync = errors.New("view out of sync")

// Controller serializes every event: each one runs to completion, including
// persistence and view updates, before the next begins.
type Controller struct {
	mu       sync.Mutex
	store    *workouts.Store
	provider mapping.Provider
	registry *markers.Registry
	surface  view.Surface
	sync     *view.Synchronizer
	log      logrus.FieldLogger
	zoom     int

	pending *model.Coordinates
	editing string
}

// Option configures a Controller.
type Option func(*Controller)

// WithZoom sets the zoom level used when panning to a workout.
func WithZoom(zoom int) Option {
	return func(c *Controller) { c.zoom = zoom }
}

func New(store *workouts.Store, provider mapping.Provider, surface view.Surface, log logrus.FieldLogger, opts ...Option) *Controller {
	registry := markers.New(provider, log)
	c := &Controller{
		store:    store,
		provider: provider,
		registry: registry,
		surface:  surface,
		sync:     view.NewSynchronizer(surface, registry, log),
		log:      log,
		zoom:     DefaultZoom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the saved workouts and renders them. It returns the number of
// workouts loaded.
func (c *Controller) Start(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.store.Load(ctx)
	if err := c.sync.OnLoad(c.store.List()); err != nil {
		metrics.RecordSyncFailure("load")
		c.log.WithError(err).Error("unable to render saved workouts")
	}
	c.updateGauges()
	return n
}

// AttachMap initializes the map, subscribes to its clicks and draws the
// markers for workouts that are already loaded.
func (c *Controller) AttachMap(ctx context.Context, center model.Coordinates, zoom int) error {
	h, err := c.provider.Initialize(ctx, center, zoom)
	if err != nil {
		return fmt.Errorf("initializing map: %w", err)
	}
	if err := c.provider.OnClick(h, c.MapClick); err != nil {
		return fmt.Errorf("subscribing to map clicks: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Attach(h)
	if err := c.sync.OnMapReady(c.store.List()); err != nil {
		metrics.RecordSyncFailure("map_ready")
		c.log.WithError(err).Error("unable to draw saved workout markers")
	}
	c.updateGauges()
	c.log.WithFields(logrus.Fields{"center": center.String(), "zoom": zoom}).Info("map attached")
	return nil
}

// MapClick records the clicked location and shows the form.
func (c *Controller) MapClick(at model.Coordinates) {
	if err := model.ValidateCoordinates(at); err != nil {
		c.log.WithError(err).Warn("ignoring map click")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &at
	c.editing = ""
	c.surface.ClearError()
	c.surface.ShowForm(at)
}

// BeginEdit opens the form pre-filled with the workout's current values.
func (c *Controller) BeginEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := c.store.Get(id)
	if err != nil {
		return err
	}
	c.editing = id
	c.surface.ClearError()
	c.surface.ShowEditForm(id, w.Form())
	return nil
}

// ToggleType switches the form's type-specific field.
func (c *Controller) ToggleType(t model.WorkoutType) error {
	if !t.Valid() {
		return &model.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown workout type %q", t)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.ToggleTypeFields(t)
	return nil
}

// Submit creates a workout from f. When f carries no location the last map
// click is used.
func (c *Controller) Submit(ctx context.Context, f model.FormData) (model.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Coordinates == nil && c.pending != nil {
		at := *c.pending
		f.Coordinates = &at
	}

	w, err := c.store.Create(ctx, f)
	if err != nil {
		return model.Workout{}, c.fail("create", err)
	}

	if err := c.sync.OnCreate(w); err != nil {
		metrics.RecordSyncFailure("create")
		c.log.WithError(err).WithField("workout_id", w.ID).Error("unable to render new workout")
		if _, _, derr := c.store.Delete(ctx, w.ID); derr != nil {
			c.log.WithError(derr).WithField("workout_id", w.ID).Error("unable to undo create")
		}
		metrics.RecordOperation("create", metrics.ResultError)
		return model.Workout{}, fmt.Errorf("creating %s: %w: %v", w.ID, ErrSync, err)
	}

	c.pending = nil
	c.surface.ClearError()
	metrics.RecordOperation("create", metrics.ResultOK)
	c.updateGauges()
	return w, nil
}

// Edit applies f to the workout with the given id.
func (c *Controller) Edit(ctx context.Context, id string, f model.FormData) (model.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	after, before, err := c.store.Edit(ctx, id, f)
	if err != nil {
		return model.Workout{}, c.fail("edit", err)
	}

	if err := c.sync.OnEdit(before, after); err != nil {
		metrics.RecordSyncFailure("edit")
		log := c.log.WithField("workout_id", id)
		log.WithError(err).Error("unable to render edited workout")
		if rerr := c.store.Restore(ctx, before); rerr != nil {
			log.WithError(rerr).Error("unable to restore workout")
		} else if serr := c.sync.OnEdit(after, before); serr != nil {
			log.WithError(serr).Error("unable to re-render restored workout")
		}
		metrics.RecordOperation("edit", metrics.ResultError)
		return model.Workout{}, fmt.Errorf("editing %s: %w: %v", id, ErrSync, err)
	}

	if c.editing == id {
		c.editing = ""
		c.surface.HideForm()
	}
	c.surface.ClearError()
	metrics.RecordOperation("edit", metrics.ResultOK)
	return after, nil
}

// Delete removes the workout with the given id. Deleting an unknown id is
// not an error; existed reports whether anything was removed.
func (c *Controller) Delete(ctx context.Context, id string) (existed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, existed, err = c.store.Delete(ctx, id)
	if err != nil {
		metrics.RecordOperation("delete", metrics.ResultError)
		c.log.WithError(err).WithField("workout_id", id).Error("unable to delete workout")
		return false, err
	}
	if !existed {
		metrics.RecordOperation("delete", metrics.ResultOK)
		return false, nil
	}

	if err := c.sync.OnDelete(id); err != nil {
		metrics.RecordSyncFailure("delete")
		c.log.WithError(err).WithField("workout_id", id).Error("list or marker missing for deleted workout")
	}
	if c.editing == id {
		c.editing = ""
		c.surface.HideForm()
	}
	metrics.RecordOperation("delete", metrics.ResultOK)
	c.updateGauges()
	return true, nil
}

// PanTo centres the map on the workout with the given id.
func (c *Controller) PanTo(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := c.store.Get(id)
	if err != nil {
		metrics.RecordOperation("pan", metrics.ResultInvalid)
		return err
	}
	if err := c.registry.PanTo(w.Coordinates, c.zoom); err != nil {
		metrics.RecordOperation("pan", metrics.ResultError)
		return fmt.Errorf("panning to %s: %w", id, err)
	}
	metrics.RecordOperation("pan", metrics.ResultOK)
	return nil
}

// Reset deletes every workout and clears the saved snapshot.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.store.Reset(ctx)
	if err != nil {
		metrics.RecordOperation("reset", metrics.ResultError)
		return err
	}
	if err := c.sync.OnReset(removed); err != nil {
		metrics.RecordSyncFailure("reset")
		c.log.WithError(err).Error("unable to clear list or markers")
	}
	c.pending = nil
	c.editing = ""
	metrics.RecordOperation("reset", metrics.ResultOK)
	c.updateGauges()
	return nil
}

// Workouts returns the collection in creation order.
func (c *Controller) Workouts() []model.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.List()
}

// Get returns the workout with the given id.
func (c *Controller) Get(id string) (model.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

// Markers returns the ids of the workouts that have a marker on the map.
func (c *Controller) Markers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.IDs()
}

// fail surfaces validation errors on the form and logs everything else.
func (c *Controller) fail(op string, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		metrics.RecordOperation(op, metrics.ResultInvalid)
		c.surface.ShowError(InputMessage(verr))
		return err
	}
	if errors.Is(err, model.ErrNotFound) {
		metrics.RecordOperation(op, metrics.ResultInvalid)
		return err
	}
	metrics.RecordOperation(op, metrics.ResultError)
	c.log.WithError(err).WithField("operation", op).Error("workout operation failed")
	return err
}

// InputMessage is the inline message shown for a rejected form.
func InputMessage(verr *model.ValidationError) string {
	if verr.Field == "location" || verr.Field == "lat" || verr.Field == "lng" {
		return fmt.Sprintf("Click the map to choose a location (%s)", verr.Reason)
	}
	return fmt.Sprintf("Inputs must be positive numbers (%s %s)", verr.Field, verr.Reason)
}

func (c *Controller) updateGauges() {
	metrics.SetCounts(c.store.Len(), c.registry.Len())
}
