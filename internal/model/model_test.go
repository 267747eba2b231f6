package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

var created = time.Date(2026, time.July, 4, 8, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		form  FormData
		field string
	}{
		{"valid run", FormData{Type: Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: 170}, ""},
		{"valid ride without elevation", FormData{Type: Cycling, DistanceKm: 20, DurationMin: 60}, ""},
		{"unknown type", FormData{Type: "swimming", DistanceKm: 1, DurationMin: 30}, "type"},
		{"zero distance", FormData{Type: Running, DistanceKm: 0, DurationMin: 25}, "distance"},
		{"negative duration", FormData{Type: Running, DistanceKm: 5, DurationMin: -1}, "duration"},
		{"infinite distance", FormData{Type: Cycling, DistanceKm: math.Inf(1), DurationMin: 25}, "distance"},
		{"NaN cadence on a run", FormData{Type: Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: math.NaN()}, "cadence"},
		{"negative elevation on a ride", FormData{Type: Cycling, DistanceKm: 5, DurationMin: 25, ElevationGainM: -3}, "elevation"},
		{"inactive field is ignored", FormData{Type: Cycling, DistanceKm: 5, DurationMin: 25, CadenceSpm: math.NaN()}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.form)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Errorf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	if err := ValidateCoordinates(Coordinates{Lat: 40.75, Lng: -74.03}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateCoordinates(Coordinates{Lat: 91, Lng: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for latitude 91, got %v", err)
	}
	if err := ValidateCoordinates(Coordinates{Lat: 0, Lng: math.NaN()}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for NaN longitude, got %v", err)
	}
}

func TestNewWorkout(t *testing.T) {
	at := Coordinates{Lat: 40.7591703, Lng: -74.0394429}

	run, err := NewWorkout("1", FormData{Type: Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: 170, ElevationGainM: 99}, at, created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.DerivedMetric != 5 {
		t.Errorf("expected pace 5, got %v", run.DerivedMetric)
	}
	if run.ElevationGainM != 0 {
		t.Errorf("expected inactive elevation to be zeroed, got %v", run.ElevationGainM)
	}
	if run.Label != "Running on July 4" {
		t.Errorf("unexpected label %q", run.Label)
	}

	ride, err := NewWorkout("2", FormData{Type: Cycling, DistanceKm: 20, DurationMin: 60, CadenceSpm: 80, ElevationGainM: 120}, at, created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.DerivedMetric != 20 || ride.CadenceSpm != 0 || ride.ElevationGainM != 120 {
		t.Errorf("unexpected ride %+v", ride)
	}

	if _, err := NewWorkout("3", FormData{Type: Running, DistanceKm: 5, DurationMin: 25}, Coordinates{Lat: 200}, created); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad coordinates, got %v", err)
	}
}

func TestApply(t *testing.T) {
	at := Coordinates{Lat: 51.5, Lng: -0.12}
	w, err := NewWorkout("1", FormData{Type: Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: 170}, at, created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved := Coordinates{Lat: 1, Lng: 1}
	edited, err := w.Apply(FormData{Type: Cycling, DistanceKm: 10, DurationMin: 30, ElevationGainM: 50, Coordinates: &moved})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.ID != w.ID || edited.Coordinates != at || !edited.CreatedAt.Equal(w.CreatedAt) {
		t.Errorf("identity fields changed: %+v", edited)
	}
	if edited.DerivedMetric != 20 || edited.Label != "Cycling on July 4" || edited.CadenceSpm != 0 {
		t.Errorf("derived fields not recomputed: %+v", edited)
	}
	if w.Type != Running {
		t.Error("Apply modified the receiver")
	}

	same, err := w.Apply(w.Form())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != w {
		t.Errorf("editing with identical values changed the workout: %+v != %+v", same, w)
	}
}

func TestUnmarshalCollection(t *testing.T) {
	at := Coordinates{Lat: 40.7, Lng: -74}
	a, _ := NewWorkout("1", FormData{Type: Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: 170}, at, created)
	b, _ := NewWorkout("2", FormData{Type: Cycling, DistanceKm: 20, DurationMin: 60, ElevationGainM: 300}, at, created.Add(time.Hour))

	data, err := MarshalCollection([]Workout{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := UnmarshalCollection(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := UnmarshalCollection([]byte(`{"not":"a list"}`)); err == nil {
		t.Error("expected error for non-array JSON")
	}
	if _, err := UnmarshalCollection([]byte(`[{"id":"1","type":"rowing","distanceKm":1,"durationMin":1}]`)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown type, got %v", err)
	}
}
