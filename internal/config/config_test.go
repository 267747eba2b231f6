package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults %+v, got %+v", Default(), cfg)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "MAPTY_CONFIG", "MAPTY_STORAGE_URL", "MAPTY_STORAGE_KEY", "MAPTY_MAP_PROVIDER",
		"MAPTY_MQTT_BROKER", "MAPTY_MQTT_TOPIC", "MAPTY_MAP_LAT", "MAPTY_MAP_LNG", "MAPTY_MAP_ZOOM",
		"LOG_LEVEL", "LOG_FORMAT", "MAPTY_SERVER",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mapty.yaml")
	yml := "storage_url: redis://localhost:6379/0\nmap_provider: mqtt\nmap_zoom: 10\nport: \"9000\"\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAPTY_CONFIG", path)
	t.Setenv("PORT", "9090")
	t.Setenv("MAPTY_MAP_LAT", "51.5")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageURL != "redis://localhost:6379/0" {
		t.Errorf("expected storage url from file, got %q", cfg.StorageURL)
	}
	if cfg.MapProvider != "mqtt" || cfg.MapZoom != 10 {
		t.Errorf("expected mqtt at zoom 10, got %q at %d", cfg.MapProvider, cfg.MapZoom)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected env to override port, got %q", cfg.Port)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected text log format, got %q", cfg.LogFormat)
	}
	if cfg.MapLat != 51.5 {
		t.Errorf("expected lat 51.5, got %v", cfg.MapLat)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		desc string
		env  map[string]string
	}{
		{"bad zoom", map[string]string{"MAPTY_MAP_ZOOM": "close"}},
		{"bad latitude", map[string]string{"MAPTY_MAP_LAT": "north"}},
		{"latitude out of range", map[string]string{"MAPTY_MAP_LAT": "120"}},
		{"unknown provider", map[string]string{"MAPTY_MAP_PROVIDER": "leaflet"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"missing file", map[string]string{"MAPTY_CONFIG": "/does/not/exist.yaml"}},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
