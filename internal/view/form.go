package view

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/lildude/mapty/internal/model"
)

// ParseForm reads the workout form fields from v. Blank optional fields are
// zero; the location is set only when both lat and lng are present. A
// missing type means running.
func ParseForm(v url.Values) (model.FormData, error) {
	return parseForm(v, model.Running)
}

// ParseEditForm reads the fields submitted to edit a workout of type
// current. A missing type keeps current.
func ParseEditForm(v url.Values, current model.WorkoutType) (model.FormData, error) {
	return parseForm(v, current)
}

func parseForm(v url.Values, defaultType model.WorkoutType) (model.FormData, error) {
	f := model.FormData{Type: defaultType}
	if s := strings.TrimSpace(v.Get("type")); s != "" {
		t, err := model.ParseWorkoutType(s)
		if err != nil {
			return model.FormData{}, err
		}
		f.Type = t
	}

	var err error
	if f.DistanceKm, err = number(v, "distance"); err != nil {
		return model.FormData{}, err
	}
	if f.DurationMin, err = number(v, "duration"); err != nil {
		return model.FormData{}, err
	}
	if f.CadenceSpm, err = number(v, "cadence"); err != nil {
		return model.FormData{}, err
	}
	if f.ElevationGainM, err = number(v, "elevation"); err != nil {
		return model.FormData{}, err
	}

	lat, lng := strings.TrimSpace(v.Get("lat")), strings.TrimSpace(v.Get("lng"))
	if lat != "" && lng != "" {
		var at model.Coordinates
		if at.Lat, err = number(v, "lat"); err != nil {
			return model.FormData{}, err
		}
		if at.Lng, err = number(v, "lng"); err != nil {
			return model.FormData{}, err
		}
		if err := model.ValidateCoordinates(at); err != nil {
			return model.FormData{}, err
		}
		f.Coordinates = &at
	}
	return f, nil
}

// ParseCoordinates reads a required lat/lng pair from v.
func ParseCoordinates(v url.Values) (model.Coordinates, error) {
	var at model.Coordinates
	var err error
	if strings.TrimSpace(v.Get("lat")) == "" || strings.TrimSpace(v.Get("lng")) == "" {
		return at, &model.ValidationError{Field: "location", Reason: "lat and lng are required"}
	}
	if at.Lat, err = number(v, "lat"); err != nil {
		return at, err
	}
	if at.Lng, err = number(v, "lng"); err != nil {
		return at, err
	}
	return at, model.ValidateCoordinates(at)
}

func number(v url.Values, field string) (float64, error) {
	s := strings.TrimSpace(v.Get(field))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Reason: "must be a number"}
	}
	return n, nil
}

// EncodeForm is the inverse of ParseForm. An empty type is left out so an
// edit keeps the workout's type.
func EncodeForm(f model.FormData) url.Values {
	v := url.Values{}
	if f.Type != "" {
		v.Set("type", string(f.Type))
	}
	v.Set("distance", strconv.FormatFloat(f.DistanceKm, 'f', -1, 64))
	v.Set("duration", strconv.FormatFloat(f.DurationMin, 'f', -1, 64))
	v.Set("cadence", strconv.FormatFloat(f.CadenceSpm, 'f', -1, 64))
	v.Set("elevation", strconv.FormatFloat(f.ElevationGainM, 'f', -1, 64))
	if f.Coordinates != nil {
		v.Set("lat", strconv.FormatFloat(f.Coordinates.Lat, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(f.Coordinates.Lng, 'f', -1, 64))
	}
	return v
}
