// Package view renders workouts into the list surface and keeps the list and
// the map markers in step with the workout store.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/lildude/mapty/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"fixed": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

var templates = template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))

// RenderEntry returns the list entry markup for w.
func RenderEntry(w model.Workout) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "entry.html", w); err != nil {
		return "", fmt.Errorf("rendering entry for %s: %w", w.ID, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
