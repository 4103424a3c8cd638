// Package config loads the rollcall configuration file.
//
// The file is YAML. Every field has a sensible default, so a minimal
// deployment only supplies the spreadsheet id and credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML string parsing ("10m", "1h30m").
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Sheets names the spreadsheet and its tabs.
type Sheets struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Guardians     string `yaml:"guardians_tab"`
	Children      string `yaml:"children_tab"`
	Events        string `yaml:"events_tab"`
	HeaderRows    int    `yaml:"header_rows"`
}

// OAuth holds the refresh-token credential for the values API.
type OAuth struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
}

// Cache tunes the in-memory projection.
type Cache struct {
	MaxAge       Duration `yaml:"max_age"`        // freshness window
	EventMaxDays int      `yaml:"event_max_days"` // retention horizon, 0 disables
	EventMax     int      `yaml:"event_max"`      // retention cap, 0 disables
}

// Config is the full rollcall configuration.
type Config struct {
	Sheets         Sheets `yaml:"sheets"`
	OAuth          OAuth  `yaml:"oauth"`
	Cache          Cache  `yaml:"cache"`
	OfflineLogPath string `yaml:"offline_log_path"`
}

// Default returns the configuration used when a field is absent from
// the file. SpreadsheetID and OAuth have no defaults.
func Default() Config {
	return Config{
		Sheets: Sheets{
			Guardians:  "Parents",
			Children:   "Children",
			Events:     "SignInOut",
			HeaderRows: 1,
		},
		Cache: Cache{
			MaxAge:       Duration(10 * time.Minute),
			EventMaxDays: 30,
			EventMax:     1000,
		},
		OfflineLogPath: "rollcall-offline.db",
	}
}

// Load reads and validates the configuration file at path. Missing
// fields take their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that have no usable default.
func (c Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("config: sheets.spreadsheet_id is required")
	}
	if c.Sheets.HeaderRows < 0 {
		return fmt.Errorf("config: sheets.header_rows must not be negative")
	}
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" || c.OAuth.RefreshToken == "" {
		return fmt.Errorf("config: oauth client_id, client_secret and refresh_token are required")
	}
	if c.Cache.MaxAge < 0 {
		return fmt.Errorf("config: cache.max_age must not be negative")
	}
	return nil
}
