package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/weather"
)

// Client geocodes a city and then fetches its hourly forecast.
type Client struct {
	geocoder   weather.Geocoder
	forecaster weather.Forecaster
}

var _ weather.Client = (*Client)(nil)

func NewClient(g weather.Geocoder, f weather.Forecaster) *Client {
	return &Client{geocoder: g, forecaster: f}
}

// FetchCityWeather returns one sample per forecast hour for city. Geocoding failures stop
// the fetch before any forecast request is made.
func (c *Client) FetchCityWeather(ctx context.Context, city string) ([]weather.Sample, error) {
	at, err := c.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	slog.Debug("geocoded city",
		"city", city, "lat", at.Lat, "lon", at.Lon,
		"geocoder", c.geocoder.Name(), "forecaster", c.forecaster.Name())

	samples, err := c.forecaster.FetchHourly(ctx, at)
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// New builds a Client from cfg. httpClient is shared by every HTTP provider; when nil one is
// created with cfg.HTTPTimeout.
func New(cfg config.WeatherConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	var g weather.Geocoder
	switch cfg.GeocoderProvider {
	case config.ProviderOpenWeather, "":
		g = NewOpenWeatherGeocoder(httpClient, cfg.APIKey, cfg.GeocodeURL, cfg.BreakerThreshold)
	case config.ProviderOpenMeteo:
		endpoint := ""
		if cfg.GeocodeURL != config.DefaultGeocodeURL {
			endpoint = cfg.GeocodeURL
		}
		g = NewOpenMeteoGeocoder(httpClient, endpoint, cfg.BreakerThreshold)
	case config.ProviderGoogle:
		g = NewGoogleGeocoder(cfg.GoogleAPIKey, "", cfg.HTTPTimeout, cfg.BreakerThreshold)
	default:
		return nil, fmt.Errorf("unsupported geocoder provider: %s", cfg.GeocoderProvider)
	}

	var f weather.Forecaster
	switch cfg.ForecastProvider {
	case config.ProviderOpenWeather, "":
		f = NewOpenWeatherForecaster(httpClient, cfg.APIKey, cfg.ForecastBaseURL, cfg.BreakerThreshold)
	case config.ProviderOpenMeteo:
		f = NewOpenMeteoForecaster(httpClient, cfg.ForecastBaseURL, cfg.BreakerThreshold)
	case config.ProviderWeatherAPI:
		f = NewWeatherAPIForecaster(httpClient, cfg.WeatherAPIKey, cfg.ForecastBaseURL, cfg.BreakerThreshold)
	default:
		return nil, fmt.Errorf("unsupported forecast provider: %s", cfg.ForecastProvider)
	}

	return NewClient(g, f), nil
}
