package mapping

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lildude/mapty/internal/model"
)

// Marker is the state of a marker on a Memory map.
type Marker struct {
	At        model.Coordinates
	Content   string
	Style     string
	PopupOpen bool
}

// Memory is a headless Provider that keeps the map state in process. It is
// used when no browser map is attached and in tests.
type Memory struct {
	mu       sync.Mutex
	handle   MapHandle
	center   model.Coordinates
	zoom     int
	markers  map[MarkerHandle]*Marker
	order    []MarkerHandle
	handlers []func(model.Coordinates)
}

func NewMemory() *Memory {
	return &Memory{markers: make(map[MarkerHandle]*Marker)}
}

func (m *Memory) Initialize(ctx context.Context, center model.Coordinates, zoom int) (MapHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = MapHandle(uuid.NewString())
	m.center, m.zoom = center, zoom
	return m.handle, nil
}

func (m *Memory) OnClick(h MapHandle, fn func(model.Coordinates)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(h); err != nil {
		return err
	}
	m.handlers = append(m.handlers, fn)
	return nil
}

// Click simulates a user clicking the map at the given location.
func (m *Memory) Click(at model.Coordinates) {
	m.mu.Lock()
	handlers := make([]func(model.Coordinates), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()
	for _, fn := range handlers {
		fn(at)
	}
}

func (m *Memory) AddMarker(h MapHandle, at model.Coordinates) (MarkerHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(h); err != nil {
		return "", err
	}
	mk := MarkerHandle(uuid.NewString())
	m.markers[mk] = &Marker{At: at}
	m.order = append(m.order, mk)
	return mk, nil
}

func (m *Memory) BindPopup(mk MarkerHandle, content, style string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	marker, ok := m.markers[mk]
	if !ok {
		return fmt.Errorf("binding popup to %s: %w", mk, ErrUnknownMarker)
	}
	marker.Content, marker.Style, marker.PopupOpen = content, style, true
	return nil
}

func (m *Memory) RemoveMarker(h MapHandle, mk MarkerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(h); err != nil {
		return err
	}
	if _, ok := m.markers[mk]; !ok {
		return fmt.Errorf("removing %s: %w", mk, ErrUnknownMarker)
	}
	delete(m.markers, mk)
	for i, o := range m.order {
		if o == mk {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) PanTo(h MapHandle, at model.Coordinates, zoom int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(h); err != nil {
		return err
	}
	m.center, m.zoom = at, zoom
	return nil
}

// View returns the current map centre and zoom level.
func (m *Memory) View() (model.Coordinates, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center, m.zoom
}

// Markers returns a copy of the markers on the map in the order they were
// added.
func (m *Memory) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, 0, len(m.order))
	for _, mk := range m.order {
		out = append(out, *m.markers[mk])
	}
	return out
}

// Marker returns the marker with the given handle.
func (m *Memory) Marker(mk MarkerHandle) (Marker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	marker, ok := m.markers[mk]
	if !ok {
		return Marker{}, false
	}
	return *marker, true
}

func (m *Memory) check(h MapHandle) error {
	if m.handle == "" || h != m.handle {
		return fmt.Errorf("map %q: %w", h, ErrUnknownMap)
	}
	return nil
}
