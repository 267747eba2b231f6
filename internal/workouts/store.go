// Package workouts holds the authoritative, ordered collection of workouts for
// a session and keeps the durable store in step with it.
package workouts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/storage"
	"github.com/sirupsen/logrus"
)

// DefaultKey is the durable store key the collection is saved under.
const DefaultKey = "workouts"

// idWidth is the number of trailing millisecond digits used for ids.
const idWidth = 10

var idModulus = int64(1e10)

// Store owns the workout collection. Every mutation writes the full
// collection to the durable store before returning and is undone in memory
// if that write fails. Store is not safe for concurrent use.
type Store struct {
	durable storage.Durable
	key     string
	log     logrus.FieldLogger
	now     func() time.Time

	workouts []model.Workout
	current  string
	lastID   int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of creation times and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKey sets the durable store key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New returns an empty Store backed by durable.
func New(durable storage.Durable, log logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		durable: durable,
		key:     DefaultKey,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates f, appends a new workout at f.Coordinates, marks it
// current and persists the collection.
func (s *Store) Create(ctx context.Context, f model.FormData) (model.Workout, error) {
	if f.Coordinates == nil {
		return model.Workout{}, &model.ValidationError{Field: "location", Reason: "no map location selected"}
	}
	if err := model.Validate(f); err != nil {
		return model.Workout{}, err
	}

	createdAt := s.now().Round(0)
	w, err := model.NewWorkout(s.nextID(createdAt), f, *f.Coordinates, createdAt)
	if err != nil {
		return model.Workout{}, err
	}

	prevCurrent := s.current
	s.workouts = append(s.workouts, w)
	s.current = w.ID
	if err := s.Persist(ctx); err != nil {
		s.workouts = s.workouts[:len(s.workouts)-1]
		s.current = prevCurrent
		return model.Workout{}, err
	}

	s.log.WithFields(logrus.Fields{"workout_id": w.ID, "type": w.Type}).Info("workout created")
	return w, nil
}

// Edit applies f to the workout with the given id and persists the
// collection. It returns the updated workout and the one it replaced.
func (s *Store) Edit(ctx context.Context, id string, f model.FormData) (after, before model.Workout, err error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Workout{}, model.Workout{}, fmt.Errorf("editing %s: %w", id, model.ErrNotFound)
	}

	before = s.workouts[i]
	after, err = before.Apply(f)
	if err != nil {
		return model.Workout{}, model.Workout{}, err
	}

	prevCurrent := s.current
	s.workouts[i] = after
	s.current = id
	if err := s.Persist(ctx); err != nil {
		s.workouts[i] = before
		s.current = prevCurrent
		return model.Workout{}, model.Workout{}, err
	}

	s.log.WithField("workout_id", id).Info("workout edited")
	return after, before, nil
}

// Restore puts w back in place of the stored workout with the same id and
// persists the collection. It is used to undo an edit.
func (s *Store) Restore(ctx context.Context, w model.Workout) error {
	i := s.indexOf(w.ID)
	if i < 0 {
		return fmt.Errorf("restoring %s: %w", w.ID, model.ErrNotFound)
	}
	prev := s.workouts[i]
	s.workouts[i] = w
	if err := s.Persist(ctx); err != nil {
		s.workouts[i] = prev
		return err
	}
	return nil
}

// Delete removes the workout with the given id and persists the collection.
// Deleting an unknown id is a no-op and reports existed=false.
func (s *Store) Delete(ctx context.Context, id string) (removed model.Workout, existed bool, err error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Workout{}, false, nil
	}

	removed = s.workouts[i]
	prev := s.workouts
	prevCurrent := s.current

	next := make([]model.Workout, 0, len(s.workouts)-1)
	next = append(next, s.workouts[:i]...)
	next = append(next, s.workouts[i+1:]...)
	s.workouts = next
	if s.current == id {
		s.current = ""
	}

	if err := s.Persist(ctx); err != nil {
		s.workouts = prev
		s.current = prevCurrent
		return model.Workout{}, false, err
	}

	s.log.WithField("workout_id", id).Info("workout deleted")
	return removed, true, nil
}

// Get returns the workout with the given id.
func (s *Store) Get(id string) (model.Workout, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Workout{}, fmt.Errorf("getting %s: %w", id, model.ErrNotFound)
	}
	return s.workouts[i], nil
}

// List returns a copy of the collection in creation order.
func (s *Store) List() []model.Workout {
	out := make([]model.Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

// Len returns the number of workouts.
func (s *Store) Len() int {
	return len(s.workouts)
}

// Current returns the most recently created or edited workout.
func (s *Store) Current() (model.Workout, bool) {
	if s.current == "" {
		return model.Workout{}, false
	}
	w, err := s.Get(s.current)
	return w, err == nil
}

// Load replaces the collection with the durable snapshot and returns the
// number of workouts loaded. A missing, unreadable or unparsable snapshot
// leaves the collection empty.
func (s *Store) Load(ctx context.Context) int {
	s.workouts = nil
	s.current = ""

	data, ok, err := s.durable.Read(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("unable to read saved workouts, starting empty")
		return 0
	}
	if !ok {
		return 0
	}

	loaded, err := model.UnmarshalCollection(data)
	if err != nil {
		s.log.WithError(err).Warn("unable to parse saved workouts, starting empty")
		return 0
	}

	seen := make(map[string]bool, len(loaded))
	for _, w := range loaded {
		if seen[w.ID] {
			s.log.WithField("workout_id", w.ID).Warn("dropping duplicate saved workout")
			continue
		}
		seen[w.ID] = true
		s.workouts = append(s.workouts, w)
		if n, err := strconv.ParseInt(w.ID, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}

	s.log.WithField("count", len(s.workouts)).Info("loaded saved workouts")
	return len(s.workouts)
}

// Persist writes the full collection to the durable store.
func (s *Store) Persist(ctx context.Context) error {
	data, err := model.MarshalCollection(s.workouts)
	if err != nil {
		return fmt.Errorf("serializing workouts: %w", err)
	}
	if err := s.durable.Write(ctx, s.key, data); err != nil {
		return fmt.Errorf("persisting workouts: %w", err)
	}
	return nil
}

// Reset clears the durable snapshot and empties the collection, returning
// the workouts that were removed.
func (s *Store) Reset(ctx context.Context) ([]model.Workout, error) {
	if err := s.durable.Clear(ctx, s.key); err != nil {
		return nil, fmt.Errorf("clearing saved workouts: %w", err)
	}
	removed := s.workouts
	s.workouts = nil
	s.current = ""
	s.log.WithField("count", len(removed)).Info("workouts reset")
	return removed, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.workouts {
		if s.workouts[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the trailing digits of the creation time in
// milliseconds, bumped past the last id handed out so ids stay unique
// within the session.
func (s *Store) nextID(at time.Time) string {
	n := at.UnixMilli() % idModulus
	if n <= s.lastID {
		n = s.lastID + 1
	}
	for s.indexOf(format(n)) >= 0 {
		n++
	}
	s.lastID = n
	return format(n)
}

func format(n int64) string {
	return fmt.Sprintf("%0*d", idWidth, n%idModulus)
}
