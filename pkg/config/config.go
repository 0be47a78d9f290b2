// Package config provides configuration loading for ProcFlow.
// Priority: defaults < config file < flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all ProcFlow configuration.
type Config struct {
	Version int `yaml:"version"`

	Source    SourceConfig    `yaml:"source"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Server    ServerConfig    `yaml:"server"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SourceConfig locates and scopes the raw event log.
type SourceConfig struct {
	// Path to the raw CSV/XLSX export.
	Path string `yaml:"path"`

	// Years accepted by the normalizer; rows outside are dropped.
	Years []int `yaml:"years"`
}

// DiscoveryConfig sets the default filter and metric selections.
type DiscoveryConfig struct {
	Objects    []string `yaml:"objects"`     // default object-type filter
	Groups     []string `yaml:"groups"`      // default activity groups
	ActMetric  string   `yaml:"act_metric"`  // unique_objects | events
	EdgeMetric string   `yaml:"edge_metric"` // unique_objects | event_couples
	TimeAgg    string   `yaml:"time_agg"`    // mean | sum
}

// ServerConfig for the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ExportConfig controls artifact output.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// TelemetryConfig for optional OTLP tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Source: SourceConfig{
			Years: []int{2020, 2021, 2022, 2023, 2024, 2025},
		},
		Discovery: DiscoveryConfig{
			Objects:    []string{"item"},
			Groups:     []string{"PO", "GR"},
			ActMetric:  "unique_objects",
			EdgeMetric: "unique_objects",
			TimeAgg:    "mean",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Export: ExportConfig{
			Dir: "out",
		},
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4317",
		},
	}
}

// Load reads configuration from a YAML file, layered over defaults.
// An empty path looks for .procflow.yaml in the working directory and falls
// back to defaults if absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ".procflow.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}
