package view

import (
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/lildude/mapty/internal/model"
)

// FormState is what the workout form currently shows. EditID is set while
// the form edits an existing workout, with Values holding its fields.
type FormState struct {
	Visible bool
	At      *model.Coordinates
	Type    model.WorkoutType
	EditID  string
	Values  model.FormData
}

// Entry is a rendered list element.
type Entry struct {
	Handle    ElementHandle
	WorkoutID string
	Markup    template.HTML
	Bindings  int
}

// Page is a server-side Surface: the sidebar document served to the browser.
type Page struct {
	mu      sync.RWMutex
	entries []*Entry
	form    FormState
	errMsg  string
}

func NewPage() *Page {
	return &Page{form: FormState{Type: model.Running}}
}

func (p *Page) InsertEntry(markup template.HTML) (ElementHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := &Entry{Handle: newHandle(), Markup: markup}
	p.entries = append([]*Entry{e}, p.entries...)
	return e.Handle, nil
}

func (p *Page) ReplaceEntry(h ElementHandle, markup template.HTML) (ElementHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(h)
	if i < 0 {
		return "", fmt.Errorf("replacing %s: %w", h, ErrUnknownElement)
	}
	e := &Entry{Handle: newHandle(), Markup: markup}
	p.entries[i] = e
	return e.Handle, nil
}

func (p *Page) RemoveEntry(h ElementHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(h)
	if i < 0 {
		return fmt.Errorf("removing %s: %w", h, ErrUnknownElement)
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return nil
}

func (p *Page) BindEntry(h ElementHandle, workoutID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(h)
	if i < 0 {
		return fmt.Errorf("binding %s: %w", h, ErrUnknownElement)
	}
	p.entries[i].WorkoutID = workoutID
	p.entries[i].Bindings++
	return nil
}

func (p *Page) ShowForm(at model.Coordinates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Visible = true
	p.form.At = &at
	p.form.EditID = ""
	p.form.Values = model.FormData{}
}

func (p *Page) ShowEditForm(id string, f model.FormData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f.Coordinates = nil
	p.form = FormState{Visible: true, Type: f.Type, EditID: id, Values: f}
}

// HideForm hides the form and clears its inputs.
func (p *Page) HideForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Visible = false
	p.form.At = nil
	p.form.EditID = ""
	p.form.Values = model.FormData{}
}

func (p *Page) ToggleTypeFields(t model.WorkoutType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Type = t
}

func (p *Page) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errMsg = msg
}

func (p *Page) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errMsg = ""
}

// Entries returns a copy of the list in display order, newest first.
func (p *Page) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	return out
}

// Form returns the current form state.
func (p *Page) Form() FormState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.form
}

// Error returns the inline error message, if any.
func (p *Page) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

// Render writes the full page.
func (p *Page) Render(w io.Writer) error {
	data := struct {
		Form    FormState
		Error   string
		Entries []Entry
	}{p.Form(), p.Error(), p.Entries()}
	return templates.ExecuteTemplate(w, "page.html", data)
}

func (p *Page) indexOf(h ElementHandle) int {
	for i, e := range p.entries {
		if e.Handle == h {
			return i
		}
	}
	return -1
}

func newHandle() ElementHandle {
	return ElementHandle("workout-" + uuid.NewString())
}
