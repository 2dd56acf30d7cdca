package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

// OpenWeatherGeocoder resolves city names through the OpenWeatherMap direct geocoding API.
type OpenWeatherGeocoder struct {
	apiKey   string
	endpoint string
	http     *requester
}

// NewOpenWeatherGeocoder creates a geocoder calling endpoint (e.g.
// http://api.openweathermap.org/geo/1.0/direct).
func NewOpenWeatherGeocoder(client *http.Client, apiKey, endpoint string, breakerThreshold uint32) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     newRequester("openweather-geocode", client, breakerThreshold),
	}
}

func (g *OpenWeatherGeocoder) Name() string {
	return "openweather"
}

// Geocode returns the first match for city, rounded to two decimals.
func (g *OpenWeatherGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	const op = "geocode"
	if g.apiKey == "" {
		return weather.Coordinates{}, weather.NewError(weather.KindRequest, op, errors.New("openweather api key is not configured"))
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("limit", "1")
	values.Set("appid", g.apiKey)

	var matches []struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	}
	if err := g.http.getJSON(ctx, op, g.endpoint, values, &matches); err != nil {
		return weather.Coordinates{}, err
	}
	if len(matches) == 0 {
		return weather.Coordinates{}, weather.NewError(weather.KindCityNotFound, op, fmt.Errorf("no match for %q", city))
	}

	return weather.NewCoordinates(matches[0].Lat, matches[0].Lon), nil
}

// OpenWeatherForecaster fetches hourly forecasts from the OpenWeatherMap One Call API.
type OpenWeatherForecaster struct {
	apiKey  string
	baseURL string
	http    *requester
}

// NewOpenWeatherForecaster creates a forecaster calling baseURL.
func NewOpenWeatherForecaster(client *http.Client, apiKey, baseURL string, breakerThreshold uint32) *OpenWeatherForecaster {
	return &OpenWeatherForecaster{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    newRequester("openweather-forecast", client, breakerThreshold),
	}
}

func (f *OpenWeatherForecaster) Name() string {
	return "openweather"
}

type openWeatherHour struct {
	Dt      int64   `json:"dt"`
	Temp    float64 `json:"temp"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// FetchHourly requests the hourly block only, in metric units. When an hour carries several
// weather conditions only the first one's description is kept.
func (f *OpenWeatherForecaster) FetchHourly(ctx context.Context, at weather.Coordinates) ([]weather.Sample, error) {
	const op = "fetch hourly"
	if f.apiKey == "" {
		return nil, weather.NewError(weather.KindRequest, op, errors.New("openweather api key is not configured"))
	}

	values := url.Values{}
	values.Set("lat", formatCoord(at.Lat))
	values.Set("lon", formatCoord(at.Lon))
	values.Set("exclude", "minutely,daily,alerts")
	values.Set("units", "metric")
	values.Set("appid", f.apiKey)

	var payload struct {
		Hourly *[]openWeatherHour `json:"hourly"`
	}
	if err := f.http.getJSON(ctx, op, f.baseURL, values, &payload); err != nil {
		return nil, err
	}
	if payload.Hourly == nil {
		return nil, weather.NewError(weather.KindRequest, op, errors.New("response has no hourly field"))
	}

	hours := *payload.Hourly
	samples := make([]weather.Sample, 0, len(hours))
	for _, h := range hours {
		var desc string
		if len(h.Weather) > 0 {
			desc = h.Weather[0].Description
		}
		samples = append(samples, weather.Sample{
			Time:        time.Unix(h.Dt, 0).UTC(),
			Temperature: h.Temp,
			Description: desc,
		})
	}
	return samples, nil
}
