// Package derive computes the statistics and labels shown for a workout from
// its raw form values.
package derive

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDivisionUndefined is returned when a derived metric would divide by zero.
var ErrDivisionUndefined = errors.New("division undefined")

var title = cases.Title(language.English)

// Pace returns the running pace in minutes per kilometre, rounded to two
// decimal places.
func Pace(distanceKm, durationMin float64) (float64, error) {
	if distanceKm == 0 {
		return 0, fmt.Errorf("pace with zero distance: %w", ErrDivisionUndefined)
	}
	return Round2(durationMin / distanceKm), nil
}

// Speed returns the cycling speed in kilometres per hour, rounded to two
// decimal places.
func Speed(distanceKm, durationMin float64) (float64, error) {
	if durationMin == 0 {
		return 0, fmt.Errorf("speed with zero duration: %w", ErrDivisionUndefined)
	}
	return Round2(distanceKm / (durationMin / 60)), nil
}

// Label returns e.g. "Running on July 4" for the given workout kind and
// creation time. The day is the day of the month in createdAt's location.
func Label(kind string, createdAt time.Time) string {
	return fmt.Sprintf("%s on %s %d", title.String(kind), createdAt.Month(), createdAt.Day())
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
