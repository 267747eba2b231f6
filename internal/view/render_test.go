package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lildude/mapty/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nyc     = model.Coordinates{Lat: 40.7591703, Lng: -74.0394429}
	created = time.Date(2026, time.March, 14, 8, 30, 0, 0, time.UTC)
)

func workout(t *testing.T, id string, f model.FormData) model.Workout {
	t.Helper()
	w, err := model.NewWorkout(id, f, nyc, created)
	require.NoError(t, err)
	return w
}

func TestRenderEntry(t *testing.T) {
	tests := []struct {
		name    string
		form    model.FormData
		want    []string
		notWant []string
	}{
		{
			name: "running",
			form: model.FormData{Type: model.Running, DistanceKm: 5, DurationMin: 25, CadenceSpm: 170},
			want: []string{
				`class="workout workout--running"`,
				`data-id="r1"`,
				"Running on March 14",
				"5.00",
				"min/km",
				"170",
				"spm",
			},
			notWant: []string{"km/h"},
		},
		{
			name: "cycling",
			form: model.FormData{Type: model.Cycling, DistanceKm: 20, DurationMin: 60, ElevationGainM: 350},
			want: []string{
				`class="workout workout--cycling"`,
				"Cycling on March 14",
				"20.00",
				"km/h",
				"350",
			},
			notWant: []string{"spm"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id := "r1"
			if tc.form.Type == model.Cycling {
				id = "c1"
			}
			got, err := RenderEntry(workout(t, id, tc.form))
			require.NoError(t, err)
			for _, s := range tc.want {
				assert.Contains(t, string(got), s)
			}
			for _, s := range tc.notWant {
				assert.NotContains(t, string(got), s)
			}
		})
	}
}

func TestPageRender(t *testing.T) {
	p := NewPage()
	markup, err := RenderEntry(workout(t, "r1", model.FormData{Type: model.Running, DistanceKm: 5, DurationMin: 25}))
	require.NoError(t, err)
	h, err := p.InsertEntry(markup)
	require.NoError(t, err)
	require.NoError(t, p.BindEntry(h, "r1"))
	p.ShowError("Inputs must be positive numbers")

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, string(h))
	assert.Contains(t, out, `data-workout="r1"`)
	assert.Contains(t, out, "Inputs must be positive numbers")
	assert.True(t, strings.Contains(out, `form hidden`), "form should be hidden until the map is clicked")
}

func TestPageRenderEditForm(t *testing.T) {
	p := NewPage()
	w := workout(t, "c1", model.FormData{Type: model.Cycling, DistanceKm: 20.5, DurationMin: 60, ElevationGainM: 150})
	p.ShowEditForm(w.ID, w.Form())

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `action="/api/workouts/c1"`)
	assert.Contains(t, out, `name="distance" value="20.5"`)
	assert.Contains(t, out, `name="duration" value="60"`)
	assert.Contains(t, out, `name="elevation" value="150"`)
	assert.Contains(t, out, ">Save<")
	assert.NotContains(t, out, `form hidden`)
	assert.NotContains(t, out, `name="lat"`)
}
