// Package workouts serves the workout page and its JSON API.
package workouts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lildude/mapty/internal/controller"
	"github.com/lildude/mapty/internal/middleware"
	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/summary"
	"github.com/lildude/mapty/internal/view"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handler dispatches HTTP requests into the controller.
type Handler struct {
	ctl  *controller.Controller
	page *view.Page
	log  logrus.FieldLogger
}

func New(ctl *controller.Controller, page *view.Page, log logrus.FieldLogger) *Handler {
	return &Handler{ctl: ctl, page: page, log: log}
}

// Router returns the routes with request logging applied. A known path
// requested with the wrong method gets a 405.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(h.log))

	router.HandleFunc("/", h.handlePage).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/api/map/click", h.handleMapClick).Methods("POST")
	router.HandleFunc("/api/form/type", h.handleToggleType).Methods("POST")
	router.HandleFunc("/api/summary", h.handleSummary).Methods("GET")
	router.HandleFunc("/api/workouts", h.handleList).Methods("GET")
	router.HandleFunc("/api/workouts", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/workouts", h.handleReset).Methods("DELETE")
	router.HandleFunc("/api/workouts/{id}", h.handleGet).Methods("GET")
	// The page's edit form posts; API clients put.
	router.HandleFunc("/api/workouts/{id}", h.handleEdit).Methods("PUT", "POST")
	router.HandleFunc("/api/workouts/{id}", h.handleDelete).Methods("DELETE")
	router.HandleFunc("/api/workouts/{id}/edit", h.handleBeginEdit).Methods("POST")
	router.HandleFunc("/api/workouts/{id}/pan", h.handlePan).Methods("POST")
	return router
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w); err != nil {
		h.log.WithError(err).Error("unable to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ws := h.ctl.Workouts()
	records := make([]model.Record, 0, len(ws))
	for _, wk := range ws {
		records = append(records, wk.Record())
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	wk, err := h.ctl.Get(mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wk.Record())
}

func (h *Handler) handleMapClick(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	at, err := view.ParseCoordinates(r.Form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.ctl.MapClick(at)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleType(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	t, err := model.ParseWorkoutType(r.Form.Get("type"))
	if err == nil {
		err = h.ctl.ToggleType(t)
	}
	if err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	f, err := view.ParseForm(r.Form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	wk, err := h.ctl.Submit(r.Context(), f)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wk.Record())
}

func (h *Handler) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.BeginEdit(mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	current, err := h.ctl.Get(id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	f, err := view.ParseEditForm(r.Form, current.Type)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	wk, err := h.ctl.Edit(r.Context(), id, f)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wk.Record())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ctl.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePan(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.PanTo(mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.Reset(r.Context()); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, summary.ByYear(h.ctl.Workouts()))
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, controller.InputMessage(verr))
	case errors.Is(err, model.ErrNotFound):
		respondError(w, http.StatusNotFound, "Workout not found")
	default:
		h.log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
