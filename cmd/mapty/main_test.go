package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lildude/mapty/internal/controller"
	"github.com/lildude/mapty/internal/handlers/workouts"
	"github.com/lildude/mapty/internal/mapping"
	"github.com/lildude/mapty/internal/storage"
	"github.com/lildude/mapty/internal/view"
	store "github.com/lildude/mapty/internal/workouts"
	"github.com/sirupsen/logrus"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	page := view.NewPage()
	ctl := controller.New(store.New(storage.NewMemoryStore(), log), mapping.NewMemory(), page, log)
	ctl.Start(context.Background())
	srv := httptest.NewServer(workouts.New(ctl, page, log).Router())
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MAPTY_CONFIG", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--server", srv.URL))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListSummary(t *testing.T) {
	srv := testServer(t)

	out, err := run(t, srv, "add", "--type", "cycling", "-d", "20", "-m", "60", "--elevation", "150", "--lat", "40.7", "--lng", "-74")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "20.00 km/h") {
		t.Errorf("expected the speed in %q", out)
	}

	if _, err := run(t, srv, "add", "-d", "5", "-m", "25", "--lat", "40.8", "--lng", "-74"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err = run(t, srv, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two workouts, got %q", out)
	}
	if !strings.Contains(lines[1], "Running") || !strings.Contains(lines[2], "Cycling") {
		t.Errorf("expected newest first, got %q", out)
	}

	out, err = run(t, srv, "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "cycling") || !strings.Contains(out, "150 m") {
		t.Errorf("unexpected summary %q", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	srv := testServer(t)

	if _, err := run(t, srv, "add", "-d", "0", "-m", "25", "--lat", "1", "--lng", "1"); err == nil {
		t.Error("expected zero distance to be rejected")
	}
	if _, err := run(t, srv, "add", "--type", "swimming", "-d", "1", "-m", "1"); err == nil {
		t.Error("expected an unknown type to be rejected")
	}
	if _, err := run(t, srv, "edit", "123", "-d", "1", "-m", "1"); err == nil {
		t.Error("expected editing an unknown workout to fail")
	}
}

func TestEditKeepsTypeUnlessGiven(t *testing.T) {
	srv := testServer(t)
	out, err := run(t, srv, "add", "--type", "cycling", "-d", "20", "-m", "60", "--elevation", "150", "--lat", "40.7", "--lng", "-74")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one workout, got %q", out)
	}
	id := strings.Fields(lines[1])[0]

	out, err = run(t, srv, "edit", id, "-d", "30", "-m", "60", "--elevation", "150")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Cycling") || !strings.Contains(out, "30.00 km/h") || !strings.Contains(out, "150 m") {
		t.Errorf("expected the workout to stay cycling, got %q", out)
	}

	out, err = run(t, srv, "edit", id, "--type", "running", "-d", "5", "-m", "25")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Running") {
		t.Errorf("expected the workout to become running, got %q", out)
	}
}

func TestDeleteAndReset(t *testing.T) {
	srv := testServer(t)
	if _, err := run(t, srv, "add", "-d", "5", "-m", "25", "--lat", "1", "--lng", "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, srv, "delete", "does-not-exist"); err != nil {
		t.Errorf("delete should be idempotent: %v", err)
	}
	if _, err := run(t, srv, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, _ := run(t, srv, "list")
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Errorf("expected only the header, got %q", out)
	}
}
