package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
	ProviderWeatherAPI  = "weatherapi"
	ProviderGoogle      = "google"

	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultGeocodeURL = "http://api.openweathermap.org/geo/1.0/direct"
)

type AppConfig struct {
	Weather  WeatherConfig  `yaml:"weather"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`

	// RefreshInterval re-reads the views periodically (0 = disabled).
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	Port string `yaml:"port"`
}

// WeatherConfig selects and configures the geocoding and forecast providers.
type WeatherConfig struct {
	APIKey           string `yaml:"api_key"`
	ForecastBaseURL  string `yaml:"base_url"`
	GeocodeURL       string `yaml:"geocode_url"`
	ForecastProvider string `yaml:"forecast_provider"`
	GeocoderProvider string `yaml:"geocoder_provider"`
	WeatherAPIKey    string `yaml:"weatherapi_api_key"`
	GoogleAPIKey     string `yaml:"google_api_key"`

	// HTTPTimeout of 0 leaves the transport default in place.
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	BreakerThreshold uint32        `yaml:"breaker_threshold"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	TimeZone     string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE), then the environment
// (including a .env file when present), and validates the result.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *AppConfig {
	return &AppConfig{
		Weather: WeatherConfig{
			GeocodeURL:       DefaultGeocodeURL,
			ForecastProvider: ProviderOpenWeather,
			GeocoderProvider: ProviderOpenWeather,
			BreakerThreshold: 5,
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			Path:         "weather.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Port: "8080",
	}
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Weather.APIKey, "API_KEY")
	setString(&cfg.Weather.ForecastBaseURL, "BASE_URL")
	setString(&cfg.Weather.GeocodeURL, "GEOCODE_URL")
	setString(&cfg.Weather.ForecastProvider, "FORECAST_PROVIDER")
	setString(&cfg.Weather.GeocoderProvider, "GEOCODER_PROVIDER")
	setString(&cfg.Weather.WeatherAPIKey, "WEATHERAPI_API_KEY")
	setString(&cfg.Weather.GoogleAPIKey, "GOOGLE_API_KEY")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Database.TimeZone, "TIMEZONE")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Port, "PORT")

	if err := setDuration(&cfg.Weather.HTTPTimeout, "HTTP_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.RefreshInterval, "REFRESH_INTERVAL"); err != nil {
		return err
	}

	if v := os.Getenv("BREAKER_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_THRESHOLD: %w", err)
		}
		cfg.Weather.BreakerThreshold = uint32(n)
	}
	if err := setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"); err != nil {
		return err
	}
	return nil
}

// Validate checks that every provider and driver has what it needs.
func (c *AppConfig) Validate() error {
	w := c.Weather
	switch w.ForecastProvider {
	case ProviderOpenWeather:
		if w.APIKey == "" {
			return errors.New("API_KEY is required for the openweather forecast provider")
		}
		if w.ForecastBaseURL == "" {
			return errors.New("BASE_URL is required for the openweather forecast provider")
		}
	case ProviderWeatherAPI:
		if w.WeatherAPIKey == "" {
			return errors.New("WEATHERAPI_API_KEY is required for the weatherapi forecast provider")
		}
	case ProviderOpenMeteo:
	default:
		return fmt.Errorf("unsupported forecast provider: %s", w.ForecastProvider)
	}

	switch w.GeocoderProvider {
	case ProviderOpenWeather:
		if w.APIKey == "" {
			return errors.New("API_KEY is required for the openweather geocoder")
		}
		if w.GeocodeURL == "" {
			return errors.New("GEOCODE_URL is required for the openweather geocoder")
		}
	case ProviderGoogle:
		if w.GoogleAPIKey == "" {
			return errors.New("GOOGLE_API_KEY is required for the google geocoder")
		}
	case ProviderOpenMeteo:
	default:
		return fmt.Errorf("unsupported geocoder provider: %s", w.GeocoderProvider)
	}

	if w.HTTPTimeout < 0 {
		return errors.New("HTTP_TIMEOUT must not be negative")
	}
	if c.RefreshInterval < 0 {
		return errors.New("REFRESH_INTERVAL must not be negative")
	}

	return c.Database.Validate()
}

func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return errors.New("sqlite path is required")
		}
	case DriverMySQL, DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("%s dsn is required", d.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s", d.Driver)
	}
	if d.TimeZone != "" {
		if _, err := time.LoadLocation(d.TimeZone); err != nil {
			return fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}
	return nil
}

// GetDSN returns the connection string for the configured driver.
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return d.DSN
}

// Location returns the zone sample timestamps are written in. The column holds wall-clock
// text without an offset, so the default is UTC, where no hour repeats; "Local" selects the
// process zone.
func (d DatabaseConfig) Location() *time.Location {
	if d.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
