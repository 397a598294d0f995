package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava"`
	Athlete AthleteConfig `json:"athlete"`
	Display DisplayConfig `json:"display"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// HRZone is one explicit heart-rate band in bpm
type HRZone struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// AthleteConfig holds athlete-specific settings. When Zones is empty the
// five zones are derived from MaxHR by fixed percentages.
type AthleteConfig struct {
	MaxHR int      `json:"max_hr"`
	Zones []HRZone `json:"zones,omitempty"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	WeekStart    string `json:"week_start"` // "monday" or "sunday"
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			MaxHR: 185,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			WeekStart:    "monday",
		},
	}
}

// Load reads the configuration from ~/.plancheck/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.WeekStart == "" {
		cfg.Display.WeekStart = defaults.Display.WeekStart
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.plancheck/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := Config{
		Strava: StravaConfig{
			ClientID:     "YOUR_CLIENT_ID",
			ClientSecret: "YOUR_CLIENT_SECRET",
		},
		Athlete: AthleteConfig{
			MaxHR: 185,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			WeekStart:    "monday",
		},
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Athlete.MaxHR < 100 || c.Athlete.MaxHR > 230 {
		return fmt.Errorf("athlete.max_hr (%d) must be between 100 and 230", c.Athlete.MaxHR)
	}

	if len(c.Athlete.Zones) > 0 {
		if len(c.Athlete.Zones) != 5 {
			return fmt.Errorf("athlete.zones must list exactly 5 zones, got %d", len(c.Athlete.Zones))
		}
		for i, z := range c.Athlete.Zones {
			if z.Min >= z.Max {
				return fmt.Errorf("athlete.zones[%d] min (%d) must be below max (%d)", i, z.Min, z.Max)
			}
			if i > 0 && z.Min != c.Athlete.Zones[i-1].Max {
				return fmt.Errorf("athlete.zones[%d] must start where zone %d ends (%d, got %d)",
					i, i, c.Athlete.Zones[i-1].Max, z.Min)
			}
		}
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.WeekStart != "" && c.Display.WeekStart != "monday" && c.Display.WeekStart != "sunday" {
		return fmt.Errorf("display.week_start must be \"monday\" or \"sunday\", got %q", c.Display.WeekStart)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".plancheck", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".plancheck"), nil
}
