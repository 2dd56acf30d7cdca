package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/weather"
)

type stubGeocoder struct {
	at  weather.Coordinates
	err error
}

func (s stubGeocoder) Name() string { return "stub" }
func (s stubGeocoder) Geocode(context.Context, string) (weather.Coordinates, error) {
	return s.at, s.err
}

type stubForecaster struct {
	calls   int
	samples []weather.Sample
	err     error
}

func (s *stubForecaster) Name() string { return "stub" }
func (s *stubForecaster) FetchHourly(context.Context, weather.Coordinates) ([]weather.Sample, error) {
	s.calls++
	return s.samples, s.err
}

func TestClientFetchCityWeather(t *testing.T) {
	want := []weather.Sample{{Time: time.Unix(0, 0).UTC(), Temperature: 3}}
	f := &stubForecaster{samples: want}
	c := NewClient(stubGeocoder{at: weather.Coordinates{Lat: 1, Lon: 2}}, f)

	got, err := c.FetchCityWeather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, f.calls)
}

func TestClientGeocodeFailureShortCircuits(t *testing.T) {
	f := &stubForecaster{}
	notFound := weather.NewError(weather.KindCityNotFound, "geocode", errors.New("no match"))
	c := NewClient(stubGeocoder{err: notFound}, f)

	_, err := c.FetchCityWeather(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
	assert.Zero(t, f.calls)
}

func TestNewSelectsProviders(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.WeatherConfig
		geocoder   string
		forecaster string
	}{
		{
			name:       "openweather",
			cfg:        config.WeatherConfig{APIKey: "k", ForecastBaseURL: "http://x", GeocodeURL: config.DefaultGeocodeURL},
			geocoder:   "openweather",
			forecaster: "openweather",
		},
		{
			name:       "openmeteo",
			cfg:        config.WeatherConfig{GeocoderProvider: config.ProviderOpenMeteo, ForecastProvider: config.ProviderOpenMeteo},
			geocoder:   "openmeteo",
			forecaster: "openmeteo",
		},
		{
			name:       "google and weatherapi",
			cfg:        config.WeatherConfig{GeocoderProvider: config.ProviderGoogle, ForecastProvider: config.ProviderWeatherAPI, GoogleAPIKey: "g", WeatherAPIKey: "w"},
			geocoder:   "google",
			forecaster: "weatherapi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.geocoder, c.geocoder.Name())
			assert.Equal(t, tt.forecaster, c.forecaster.Name())
		})
	}

	_, err := New(config.WeatherConfig{ForecastProvider: "darksky"}, nil)
	assert.Error(t, err)
}
