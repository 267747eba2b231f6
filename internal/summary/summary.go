// Package summary totals workouts per calendar year and type.
package summary

import (
	"sort"

	"github.com/lildude/mapty/internal/derive"
	"github.com/lildude/mapty/internal/model"
)

// Total is the running sum for one year and workout type.
type Total struct {
	Year               int               `json:"year"`
	Type               model.WorkoutType `json:"type"`
	Count              int               `json:"count"`
	DistanceKm         float64           `json:"distanceKm"`
	DurationMin        float64           `json:"durationMin"`
	TotalElevationGain float64           `json:"elevationGainM"`
}

type key struct {
	year int
	kind model.WorkoutType
}

// ByYear returns one Total per year and type present in ws, newest year
// first and running before cycling within a year.
func ByYear(ws []model.Workout) []Total {
	totals := make(map[key]*Total)
	for _, w := range ws {
		k := key{year: w.CreatedAt.Year(), kind: w.Type}
		t, ok := totals[k]
		if !ok {
			t = &Total{Year: k.year, Type: k.kind}
			totals[k] = t
		}
		t.Count++
		t.DistanceKm += w.DistanceKm
		t.DurationMin += w.DurationMin
		// Only cycling records elevation.
		t.TotalElevationGain += w.ElevationGainM
	}

	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		t.DistanceKm = derive.Round2(t.DistanceKm)
		t.DurationMin = derive.Round2(t.DurationMin)
		t.TotalElevationGain = derive.Round2(t.TotalElevationGain)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Type > out[j].Type
	})
	return out
}
