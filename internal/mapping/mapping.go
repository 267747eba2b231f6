// Package mapping defines the map provider the workout markers are drawn on
// and ships two implementations: a headless in-process map and one that
// relays map commands over MQTT to a browser client.
package mapping

import (
	"context"
	"errors"

	"github.com/lildude/mapty/internal/model"
)

var (
	// ErrUnknownMap is returned for a map handle the provider did not issue.
	ErrUnknownMap = errors.New("unknown map")
	// ErrUnknownMarker is returned for a marker handle that is not on the map.
	ErrUnknownMarker = errors.New("unknown marker")
)

// MapHandle identifies an initialized map.
type MapHandle string

// MarkerHandle identifies a marker placed on a map.
type MarkerHandle string

// Provider is the map rendering engine.
type Provider interface {
	// Initialize creates a map centred on center. It may block until the
	// map is ready.
	Initialize(ctx context.Context, center model.Coordinates, zoom int) (MapHandle, error)
	// OnClick registers fn to receive the location of clicks on the map.
	OnClick(m MapHandle, fn func(model.Coordinates)) error
	AddMarker(m MapHandle, at model.Coordinates) (MarkerHandle, error)
	// BindPopup closes any popup on the marker, binds a new one with the
	// given content and style class, and opens it.
	BindPopup(mk MarkerHandle, content, style string) error
	RemoveMarker(m MapHandle, mk MarkerHandle) error
	PanTo(m MapHandle, at model.Coordinates, zoom int) error
}
