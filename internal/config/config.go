// Package config centralises configuration parsing for mapty.
package config

import (
	"fmt"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// Config captures runtime configuration values. Values come from the
// defaults, then the YAML file named by MAPTY_CONFIG, then the environment.
type Config struct {
	Port        string  `yaml:"port"`
	StorageURL  string  `yaml:"storage_url"`
	StorageKey  string  `yaml:"storage_key"`
	MapProvider string  `yaml:"map_provider"`
	MQTTBroker  string  `yaml:"mqtt_broker"`
	MQTTTopic   string  `yaml:"mqtt_topic"`
	MapLat      float64 `yaml:"map_lat"`
	MapLng      float64 `yaml:"map_lng"`
	MapZoom     int     `yaml:"map_zoom"`
	LogLevel    string  `yaml:"log_level"`
	LogFormat   string  `yaml:"log_format"`
	ServerURL   string  `yaml:"server_url"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:        "8080",
		StorageURL:  "memory://",
		StorageKey:  "workouts",
		MapProvider: "memory",
		MQTTBroker:  "tcp://localhost:1883",
		MQTTTopic:   "mapty",
		MapLat:      40.7591703,
		MapLng:      -74.0394429,
		MapZoom:     13,
		LogLevel:    "info",
		LogFormat:   "json",
		ServerURL:   "http://localhost:8080",
	}
}

// Load builds the configuration from the defaults, the optional YAML file and
// the environment.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("MAPTY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.StorageURL = getEnv("MAPTY_STORAGE_URL", cfg.StorageURL)
	cfg.StorageKey = getEnv("MAPTY_STORAGE_KEY", cfg.StorageKey)
	cfg.MapProvider = getEnv("MAPTY_MAP_PROVIDER", cfg.MapProvider)
	cfg.MQTTBroker = getEnv("MAPTY_MQTT_BROKER", cfg.MQTTBroker)
	cfg.MQTTTopic = getEnv("MAPTY_MQTT_TOPIC", cfg.MQTTTopic)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.ServerURL = getEnv("MAPTY_SERVER", cfg.ServerURL)

	var err error
	if cfg.MapLat, err = getFloatEnv("MAPTY_MAP_LAT", cfg.MapLat); err != nil {
		return Config{}, err
	}
	if cfg.MapLng, err = getFloatEnv("MAPTY_MAP_LNG", cfg.MapLng); err != nil {
		return Config{}, err
	}
	if cfg.MapZoom, err = getIntEnv("MAPTY_MAP_ZOOM", cfg.MapZoom); err != nil {
		return Config{}, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.MapProvider {
	case "memory", "mqtt":
	default:
		return fmt.Errorf("invalid map provider %q: must be memory or mqtt", c.MapProvider)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: must be json or text", c.LogFormat)
	}
	if c.MapLat < -90 || c.MapLat > 90 || c.MapLng < -180 || c.MapLng > 180 {
		return fmt.Errorf("invalid map centre %v,%v", c.MapLat, c.MapLng)
	}
	if c.MapZoom < 0 {
		return fmt.Errorf("invalid map zoom %d", c.MapZoom)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
