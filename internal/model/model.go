// Package model defines the workout record, the form values it is built from
// and the flat record format it is persisted as.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lildude/mapty/internal/derive"
)

var (
	// ErrInvalidInput is returned when form values fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a workout id is unknown.
	ErrNotFound = errors.New("workout not found")
)

// WorkoutType is the kind of activity a workout records.
type WorkoutType string

const (
	Running WorkoutType = "running"
	Cycling WorkoutType = "cycling"
)

// ParseWorkoutType accepts the type names case-insensitively.
func ParseWorkoutType(s string) (WorkoutType, error) {
	t := WorkoutType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown workout type %q", s)}
	}
	return t, nil
}

// Valid reports whether t is a supported workout type.
func (t WorkoutType) Valid() bool {
	return t == Running || t == Cycling
}

// Icon returns the emoji shown next to workouts of this type.
func (t WorkoutType) Icon() string {
	if t == Running {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// MetricUnit is the unit of the derived metric for this type.
func (t WorkoutType) MetricUnit() string {
	if t == Running {
		return "min/km"
	}
	return "km/h"
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// ValidationError describes which form field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// FormData holds the values submitted from the workout form. Coordinates is
// nil when the form did not carry a location.
type FormData struct {
	Type           WorkoutType
	DistanceKm     float64
	DurationMin    float64
	CadenceSpm     float64
	ElevationGainM float64
	Coordinates    *Coordinates
}

// Validate checks the numeric fields of f. Only the type-specific field that
// is active for f.Type is inspected.
func Validate(f FormData) error {
	if !f.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown workout type %q", f.Type)}
	}
	if !positive(f.DistanceKm) {
		return &ValidationError{Field: "distance", Reason: "must be a positive number"}
	}
	if !positive(f.DurationMin) {
		return &ValidationError{Field: "duration", Reason: "must be a positive number"}
	}
	switch f.Type {
	case Running:
		if !nonNegative(f.CadenceSpm) {
			return &ValidationError{Field: "cadence", Reason: "must be zero or a positive number"}
		}
	case Cycling:
		if !nonNegative(f.ElevationGainM) {
			return &ValidationError{Field: "elevation", Reason: "must be zero or a positive number"}
		}
	}
	return nil
}

// ValidateCoordinates checks that c is a real point on the map.
func ValidateCoordinates(c Coordinates) error {
	if !finite(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "lat", Reason: "must be between -90 and 90"}
	}
	if !finite(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return &ValidationError{Field: "lng", Reason: "must be between -180 and 180"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func nonNegative(v float64) bool {
	return finite(v) && v >= 0
}

// Workout is a single tracked activity. ID, Coordinates and CreatedAt never
// change once the workout exists.
type Workout struct {
	ID             string
	Type           WorkoutType
	DistanceKm     float64
	DurationMin    float64
	Coordinates    Coordinates
	CadenceSpm     float64
	ElevationGainM float64
	DerivedMetric  float64
	Label          string
	CreatedAt      time.Time
}

// NewWorkout validates f and builds a workout at the given location.
func NewWorkout(id string, f FormData, at Coordinates, createdAt time.Time) (Workout, error) {
	if err := Validate(f); err != nil {
		return Workout{}, err
	}
	if err := ValidateCoordinates(at); err != nil {
		return Workout{}, err
	}
	w := Workout{ID: id, Coordinates: at, CreatedAt: createdAt}
	if err := w.assign(f); err != nil {
		return Workout{}, err
	}
	return w, nil
}

// Apply returns a copy of w with the editable fields taken from f and the
// derived fields recomputed. f.Coordinates is ignored.
func (w Workout) Apply(f FormData) (Workout, error) {
	if err := Validate(f); err != nil {
		return Workout{}, err
	}
	updated := w
	if err := updated.assign(f); err != nil {
		return Workout{}, err
	}
	return updated, nil
}

func (w *Workout) assign(f FormData) error {
	w.Type = f.Type
	w.DistanceKm = f.DistanceKm
	w.DurationMin = f.DurationMin
	w.CadenceSpm, w.ElevationGainM = 0, 0
	if f.Type == Running {
		w.CadenceSpm = f.CadenceSpm
	} else {
		w.ElevationGainM = f.ElevationGainM
	}
	return w.derive()
}

func (w *Workout) derive() error {
	var err error
	if w.Type == Running {
		w.DerivedMetric, err = derive.Pace(w.DistanceKm, w.DurationMin)
	} else {
		w.DerivedMetric, err = derive.Speed(w.DistanceKm, w.DurationMin)
	}
	if err != nil {
		return fmt.Errorf("deriving metric for %s: %w", w.ID, err)
	}
	w.Label = derive.Label(string(w.Type), w.CreatedAt)
	return nil
}

// Form returns the form values that would reproduce w's editable fields.
func (w Workout) Form() FormData {
	at := w.Coordinates
	return FormData{
		Type:           w.Type,
		DistanceKm:     w.DistanceKm,
		DurationMin:    w.DurationMin,
		CadenceSpm:     w.CadenceSpm,
		ElevationGainM: w.ElevationGainM,
		Coordinates:    &at,
	}
}

// Record is the flat, persisted form of a Workout.
type Record struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	DistanceKm     float64   `json:"distanceKm"`
	DurationMin    float64   `json:"durationMin"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	CadenceSpm     float64   `json:"cadenceSpm"`
	ElevationGainM float64   `json:"elevationGainM"`
	DerivedMetric  float64   `json:"derivedMetric"`
	Label          string    `json:"label"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Record flattens w.
func (w Workout) Record() Record {
	return Record{
		ID:             w.ID,
		Type:           string(w.Type),
		DistanceKm:     w.DistanceKm,
		DurationMin:    w.DurationMin,
		Latitude:       w.Coordinates.Lat,
		Longitude:      w.Coordinates.Lng,
		CadenceSpm:     w.CadenceSpm,
		ElevationGainM: w.ElevationGainM,
		DerivedMetric:  w.DerivedMetric,
		Label:          w.Label,
		CreatedAt:      w.CreatedAt,
	}
}

// Workout rebuilds a workout from r, validating it and recomputing the
// derived fields.
func (r Record) Workout() (Workout, error) {
	if r.ID == "" {
		return Workout{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	t, err := ParseWorkoutType(r.Type)
	if err != nil {
		return Workout{}, err
	}
	return NewWorkout(r.ID, FormData{
		Type:           t,
		DistanceKm:     r.DistanceKm,
		DurationMin:    r.DurationMin,
		CadenceSpm:     r.CadenceSpm,
		ElevationGainM: r.ElevationGainM,
	}, Coordinates{Lat: r.Latitude, Lng: r.Longitude}, r.CreatedAt)
}

// MarshalCollection serializes the workouts as a JSON array of records.
func MarshalCollection(workouts []Workout) ([]byte, error) {
	records := make([]Record, 0, len(workouts))
	for _, w := range workouts {
		records = append(records, w.Record())
	}
	return json.Marshal(records)
}

// UnmarshalCollection parses a JSON array of records, keeping their order.
func UnmarshalCollection(data []byte) ([]Workout, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling workouts: %w", err)
	}
	workouts := make([]Workout, 0, len(records))
	for i, r := range records {
		w, err := r.Workout()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}
