package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/devskill-org/energy-dashboard/forecast"
	"github.com/devskill-org/energy-dashboard/weather"
)

// Environment variables that override file configuration
const (
	EnvOpenWeatherAPIKey = "OPENWEATHER_API_KEY"
	EnvForecastAPIURL    = "FORECAST_API_URL"
	EnvPostgresConn      = "POSTGRES_CONN_STRING"
)

// Config represents the configuration of the dashboard service
type Config struct {
	// Web server
	Port      int    `json:"port" yaml:"port"`             // HTTP port (0 = disabled)
	StaticDir string `json:"static_dir" yaml:"static_dir"` // Front-end build served at /

	// Forecast model
	ForecastAPIURL    string        `json:"forecast_api_url" yaml:"forecast_api_url"`
	ForecastModel     string        `json:"forecast_model" yaml:"forecast_model"`
	ForecastTimeout   time.Duration `json:"forecast_timeout" yaml:"forecast_timeout"`       // 0 = no client timeout
	ForecastRateLimit float64       `json:"forecast_rate_limit" yaml:"forecast_rate_limit"` // requests/s, 0 = unlimited
	ForecastBurst     int           `json:"forecast_burst" yaml:"forecast_burst"`

	// City weather (OpenWeatherMap)
	OpenWeatherAPIKey string  `json:"openweather_api_key" yaml:"openweather_api_key"`
	OpenWeatherURL    string  `json:"openweather_url" yaml:"openweather_url"`
	WeatherRateLimit  float64 `json:"weather_rate_limit" yaml:"weather_rate_limit"` // requests/s, 0 = unlimited

	// Plant site
	SiteName              string        `json:"site_name" yaml:"site_name"`
	Latitude              float64       `json:"latitude" yaml:"latitude"`
	Longitude             float64       `json:"longitude" yaml:"longitude"`
	Timezone              string        `json:"timezone" yaml:"timezone"`
	PeakPowerKW           float64       `json:"peak_power_kw" yaml:"peak_power_kw"`
	SiteWeatherEnabled    bool          `json:"site_weather_enabled" yaml:"site_weather_enabled"`
	WeatherUpdateInterval time.Duration `json:"weather_update_interval" yaml:"weather_update_interval"`
	UserAgent             string        `json:"user_agent" yaml:"user_agent"` // MET Norway requires an identifying agent

	// Plant Modbus server
	PlantModbusAddress string        `json:"plant_modbus_address" yaml:"plant_modbus_address"` // IP:PORT, empty = disabled
	PlantPollInterval  time.Duration `json:"plant_poll_interval" yaml:"plant_poll_interval"`
	PlantTimeout       time.Duration `json:"plant_timeout" yaml:"plant_timeout"`

	// Forecast history
	HistoryPath          string        `json:"history_path" yaml:"history_path"`                 // SQLite file, empty = disabled
	PostgresConnString   string        `json:"postgres_conn_string" yaml:"postgres_conn_string"` // takes precedence over history_path
	HistoryRetention     time.Duration `json:"history_retention" yaml:"history_retention"`
	HistoryPruneInterval time.Duration `json:"history_prune_interval" yaml:"history_prune_interval"`

	BroadcastInterval time.Duration `json:"broadcast_interval" yaml:"broadcast_interval"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                  8080,
		StaticDir:             "./web/dist",
		ForecastAPIURL:        forecast.DefaultBaseURL,
		ForecastModel:         forecast.DefaultModel,
		ForecastTimeout:       0,
		ForecastRateLimit:     1,
		ForecastBurst:         3,
		OpenWeatherURL:        weather.DefaultBaseURL,
		WeatherRateLimit:      1,
		SiteName:              "San Francisco, CA",
		Latitude:              37.7749,
		Longitude:             -122.4194,
		Timezone:              "America/Los_Angeles",
		PeakPowerKW:           100,
		SiteWeatherEnabled:    true,
		WeatherUpdateInterval: 1 * time.Hour,
		UserAgent:             "energy-dashboard/1.0 (ops@example.com)",
		PlantPollInterval:     10 * time.Second,
		PlantTimeout:          2 * time.Second,
		HistoryPath:           "history.db",
		HistoryRetention:      90 * 24 * time.Hour,
		HistoryPruneInterval:  24 * time.Hour,
		BroadcastInterval:     5 * time.Second,
	}
}

// LoadConfig loads configuration from a JSON or, for .yml/.yaml files,
// YAML file
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		return LoadConfigFromYAML(file)
	}
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads JSON configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromYAML loads YAML configuration from an io.Reader
func LoadConfigFromYAML(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides secrets and endpoints from the environment. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOpenWeatherAPIKey); ok && v != "" {
		c.OpenWeatherAPIKey = v
	}
	if v, ok := lookup(EnvForecastAPIURL); ok && v != "" {
		c.ForecastAPIURL = v
	}
	if v, ok := lookup(EnvPostgresConn); ok && v != "" {
		c.PostgresConnString = v
	}
}

// ApplyEnvFile applies overrides read from a .env file without touching
// the process environment. A missing file is not an error.
func (c *Config) ApplyEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	c.ApplyEnv(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
	return nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port)
	}

	if c.ForecastAPIURL == "" {
		return fmt.Errorf("forecast_api_url cannot be empty")
	}
	if u, err := url.Parse(c.ForecastAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("forecast_api_url must be an absolute URL, got: %q", c.ForecastAPIURL)
	}

	if c.ForecastModel == "" {
		return fmt.Errorf("forecast_model cannot be empty")
	}

	if c.ForecastTimeout < 0 {
		return fmt.Errorf("forecast_timeout must be non-negative, got: %s", c.ForecastTimeout)
	}

	if c.ForecastRateLimit < 0 || c.WeatherRateLimit < 0 {
		return fmt.Errorf("rate limits must be non-negative")
	}

	if c.ForecastRateLimit > 0 && c.ForecastBurst < 1 {
		return fmt.Errorf("forecast_burst must be at least 1 when rate limiting, got: %d", c.ForecastBurst)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", c.Longitude)
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}

	if c.PeakPowerKW < 0 {
		return fmt.Errorf("peak_power_kw must be non-negative, got: %f", c.PeakPowerKW)
	}

	if c.SiteWeatherEnabled {
		if c.UserAgent == "" {
			return fmt.Errorf("user_agent cannot be empty when site weather is enabled")
		}
		if c.WeatherUpdateInterval <= 0 {
			return fmt.Errorf("weather_update_interval must be greater than 0, got: %s", c.WeatherUpdateInterval)
		}
	}

	if c.PlantModbusAddress != "" {
		if c.PlantPollInterval <= 0 {
			return fmt.Errorf("plant_poll_interval must be greater than 0, got: %s", c.PlantPollInterval)
		}
		if c.PlantTimeout <= 0 {
			return fmt.Errorf("plant_timeout must be greater than 0, got: %s", c.PlantTimeout)
		}
	}

	if c.HistoryRetention < 0 {
		return fmt.Errorf("history_retention must be non-negative, got: %s", c.HistoryRetention)
	}

	if c.HistoryRetention > 0 && c.HistoryPruneInterval <= 0 {
		return fmt.Errorf("history_prune_interval must be greater than 0, got: %s", c.HistoryPruneInterval)
	}

	if c.BroadcastInterval <= 0 {
		return fmt.Errorf("broadcast_interval must be greater than 0, got: %s", c.BroadcastInterval)
	}

	return nil
}

// Location returns the site time zone, UTC when unset
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HistoryEnabled reports whether forecasts are persisted
func (c *Config) HistoryEnabled() bool {
	return c.PostgresConnString != "" || c.HistoryPath != ""
}

// MarshalJSON writes durations as Go duration strings
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		ForecastTimeout       string `json:"forecast_timeout"`
		WeatherUpdateInterval string `json:"weather_update_interval"`
		PlantPollInterval     string `json:"plant_poll_interval"`
		PlantTimeout          string `json:"plant_timeout"`
		HistoryRetention      string `json:"history_retention"`
		HistoryPruneInterval  string `json:"history_prune_interval"`
		BroadcastInterval     string `json:"broadcast_interval"`
	}{
		Alias:                 (*Alias)(c),
		ForecastTimeout:       c.ForecastTimeout.String(),
		WeatherUpdateInterval: c.WeatherUpdateInterval.String(),
		PlantPollInterval:     c.PlantPollInterval.String(),
		PlantTimeout:          c.PlantTimeout.String(),
		HistoryRetention:      c.HistoryRetention.String(),
		HistoryPruneInterval:  c.HistoryPruneInterval.String(),
		BroadcastInterval:     c.BroadcastInterval.String(),
	})
}

// UnmarshalJSON reads durations as Go duration strings
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		ForecastTimeout       string `json:"forecast_timeout"`
		WeatherUpdateInterval string `json:"weather_update_interval"`
		PlantPollInterval     string `json:"plant_poll_interval"`
		PlantTimeout          string `json:"plant_timeout"`
		HistoryRetention      string `json:"history_retention"`
		HistoryPruneInterval  string `json:"history_prune_interval"`
		BroadcastInterval     string `json:"broadcast_interval"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"forecast_timeout", aux.ForecastTimeout, &c.ForecastTimeout},
		{"weather_update_interval", aux.WeatherUpdateInterval, &c.WeatherUpdateInterval},
		{"plant_poll_interval", aux.PlantPollInterval, &c.PlantPollInterval},
		{"plant_timeout", aux.PlantTimeout, &c.PlantTimeout},
		{"history_retention", aux.HistoryRetention, &c.HistoryRetention},
		{"history_prune_interval", aux.HistoryPruneInterval, &c.HistoryPruneInterval},
		{"broadcast_interval", aux.BroadcastInterval, &c.BroadcastInterval},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = d
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
