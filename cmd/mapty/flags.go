package main

import (
	"github.com/lildude/mapty/internal/model"
	"github.com/spf13/pflag"
)

// typeValue is a pflag.Value accepting running or cycling.
type typeValue model.WorkoutType

var _ pflag.Value = (*typeValue)(nil)

func (v *typeValue) String() string { return string(*v) }

func (v *typeValue) Set(s string) error {
	t, err := model.ParseWorkoutType(s)
	if err != nil {
		return err
	}
	*v = typeValue(t)
	return nil
}

func (v *typeValue) Type() string { return "running|cycling" }

// workoutFlags are the form fields shared by add and edit.
type workoutFlags struct {
	kind      typeValue
	distance  float64
	duration  float64
	cadence   float64
	elevation float64
	lat       float64
	lng       float64
}

func (f *workoutFlags) register(fs *pflag.FlagSet, withLocation bool) {
	f.kind = typeValue(model.Running)
	fs.VarP(&f.kind, "type", "t", "Workout type")
	fs.Float64VarP(&f.distance, "distance", "d", 0, "Distance in km")
	fs.Float64VarP(&f.duration, "duration", "m", 0, "Duration in minutes")
	fs.Float64Var(&f.cadence, "cadence", 0, "Cadence in steps per minute (running)")
	fs.Float64Var(&f.elevation, "elevation", 0, "Elevation gain in metres (cycling)")
	if withLocation {
		fs.Float64Var(&f.lat, "lat", 0, "Latitude of the workout")
		fs.Float64Var(&f.lng, "lng", 0, "Longitude of the workout")
	}
}

// form builds the form data. The location is included only when both lat
// and lng were given on the command line.
func (f *workoutFlags) form(fs *pflag.FlagSet) model.FormData {
	data := model.FormData{
		Type:           model.WorkoutType(f.kind),
		DistanceKm:     f.distance,
		DurationMin:    f.duration,
		CadenceSpm:     f.cadence,
		ElevationGainM: f.elevation,
	}
	if fs.Changed("lat") && fs.Changed("lng") {
		data.Coordinates = &model.Coordinates{Lat: f.lat, Lng: f.lng}
	}
	return data
}
