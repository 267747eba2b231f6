package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/summary"
	"github.com/lildude/mapty/internal/view"
)

// ListWorkouts returns the saved workouts in creation order.
func (c *Client) ListWorkouts(ctx context.Context) ([]model.Record, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, "api/workouts", nil)
	if err != nil {
		return nil, err
	}
	var records []model.Record
	if _, err := c.Do(req, &records); err != nil { //nolint:bodyclose // Do closes the body
		return nil, err
	}
	return records, nil
}

// GetWorkout returns a single workout.
func (c *Client) GetWorkout(ctx context.Context, id string) (model.Record, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, "api/workouts/"+url.PathEscape(id), nil)
	if err != nil {
		return model.Record{}, err
	}
	var r model.Record
	_, err = c.Do(req, &r) //nolint:bodyclose // Do closes the body
	return r, err
}

// ClickMap selects the location used by the next CreateWorkout without
// coordinates.
func (c *Client) ClickMap(ctx context.Context, at model.Coordinates) error {
	form := url.Values{}
	form.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	form.Set("lng", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	req, err := c.NewRequest(ctx, http.MethodPost, "api/map/click", form)
	if err != nil {
		return err
	}
	_, err = c.Do(req, nil) //nolint:bodyclose // Do closes the body
	return err
}

// CreateWorkout submits the workout form.
func (c *Client) CreateWorkout(ctx context.Context, f model.FormData) (model.Record, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, "api/workouts", view.EncodeForm(f))
	if err != nil {
		return model.Record{}, err
	}
	var r model.Record
	_, err = c.Do(req, &r) //nolint:bodyclose // Do closes the body
	return r, err
}

// EditWorkout replaces the editable fields of a workout.
func (c *Client) EditWorkout(ctx context.Context, id string, f model.FormData) (model.Record, error) {
	f.Coordinates = nil
	req, err := c.NewRequest(ctx, http.MethodPut, "api/workouts/"+url.PathEscape(id), view.EncodeForm(f))
	if err != nil {
		return model.Record{}, err
	}
	var r model.Record
	_, err = c.Do(req, &r) //nolint:bodyclose // Do closes the body
	return r, err
}

// BeginEdit opens the page's form pre-filled with a workout's values.
func (c *Client) BeginEdit(ctx context.Context, id string) error {
	req, err := c.NewRequest(ctx, http.MethodPost, fmt.Sprintf("api/workouts/%s/edit", url.PathEscape(id)), nil)
	if err != nil {
		return err
	}
	_, err = c.Do(req, nil) //nolint:bodyclose // Do closes the body
	return err
}

// DeleteWorkout removes a workout. Deleting an unknown id succeeds.
func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, "api/workouts/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	_, err = c.Do(req, nil) //nolint:bodyclose // Do closes the body
	return err
}

// PanTo centres the map on a workout.
func (c *Client) PanTo(ctx context.Context, id string) error {
	req, err := c.NewRequest(ctx, http.MethodPost, fmt.Sprintf("api/workouts/%s/pan", url.PathEscape(id)), nil)
	if err != nil {
		return err
	}
	_, err = c.Do(req, nil) //nolint:bodyclose // Do closes the body
	return err
}

// Reset deletes every workout.
func (c *Client) Reset(ctx context.Context) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, "api/workouts", nil)
	if err != nil {
		return err
	}
	_, err = c.Do(req, nil) //nolint:bodyclose // Do closes the body
	return err
}

// Summary returns the yearly totals.
func (c *Client) Summary(ctx context.Context) ([]summary.Total, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, "api/summary", nil)
	if err != nil {
		return nil, err
	}
	var totals []summary.Total
	if _, err := c.Do(req, &totals); err != nil { //nolint:bodyclose // Do closes the body
		return nil, err
	}
	return totals, nil
}
