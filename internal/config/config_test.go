package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"API_KEY", "BASE_URL", "GEOCODE_URL", "FORECAST_PROVIDER", "GEOCODER_PROVIDER",
	"WEATHERAPI_API_KEY", "GOOGLE_API_KEY", "HTTP_TIMEOUT", "BREAKER_THRESHOLD",
	"DB_DRIVER", "DB_PATH", "DB_DSN", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"PORT", "REFRESH_INTERVAL", "LOG_LEVEL", "LOG_FORMAT", "TIMEZONE", "CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("BASE_URL", "https://api.openweathermap.org/data/3.0/onecall")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Weather.APIKey)
	assert.Equal(t, DefaultGeocodeURL, cfg.Weather.GeocodeURL)
	assert.Equal(t, ProviderOpenWeather, cfg.Weather.ForecastProvider)
	assert.Equal(t, ProviderOpenWeather, cfg.Weather.GeocoderProvider)
	assert.Zero(t, cfg.Weather.HTTPTimeout)
	assert.EqualValues(t, 5, cfg.Weather.BreakerThreshold)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "weather.db", cfg.Database.GetDSN())
	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, time.UTC, cfg.Database.Location())
}

func TestLoadRequiresKeyAndBaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")

	t.Setenv("API_KEY", "secret")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BASE_URL")
}

func TestLoadOpenMeteoNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_PROVIDER", ProviderOpenMeteo)
	t.Setenv("GEOCODER_PROVIDER", ProviderOpenMeteo)
	t.Setenv("DB_DRIVER", DriverMemory)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
refresh_interval: 5m
weather:
  api_key: from-file
  base_url: https://example.test/onecall
  http_timeout: 15s
database:
  driver: postgres
  dsn: host=localhost user=weather dbname=weather
  timezone: UTC
logging:
  level: debug
  format: json
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_KEY", "from-env")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, "https://example.test/onecall", cfg.Weather.ForecastBaseURL)
	assert.Equal(t, 15*time.Second, cfg.Weather.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=localhost user=weather dbname=weather", cfg.Database.GetDSN())
	assert.Equal(t, time.UTC, cfg.Database.Location())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HTTP_TIMEOUT", "soon"},
		{"BREAKER_THRESHOLD", "-1"},
		{"DB_MAX_OPEN_CONNS", "many"},
		{"DB_DRIVER", "oracle"},
		{"FORECAST_PROVIDER", "darksky"},
		{"TIMEZONE", "Mars/Olympus"},
		{"REFRESH_INTERVAL", "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("API_KEY", "secret")
			t.Setenv("BASE_URL", "https://example.test")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseValidate(t *testing.T) {
	assert.Error(t, DatabaseConfig{Driver: DriverSQLite}.Validate())
	assert.Error(t, DatabaseConfig{Driver: DriverMySQL}.Validate())
	assert.NoError(t, DatabaseConfig{Driver: DriverMySQL, DSN: "user:pass@/weather"}.Validate())
	assert.NoError(t, DatabaseConfig{Driver: DriverMemory}.Validate())
}

func TestDatabaseLocation(t *testing.T) {
	assert.Equal(t, time.UTC, DatabaseConfig{}.Location())
	assert.Equal(t, time.Local, DatabaseConfig{TimeZone: "Local"}.Location())
	assert.Equal(t, time.UTC, DatabaseConfig{TimeZone: "Mars/Olympus"}.Location())
}
