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

const (
	openMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

// OpenMeteoGeocoder resolves city names through the Open-Meteo geocoding API. No key needed.
type OpenMeteoGeocoder struct {
	endpoint string
	http     *requester
}

func NewOpenMeteoGeocoder(client *http.Client, endpoint string, breakerThreshold uint32) *OpenMeteoGeocoder {
	if endpoint == "" {
		endpoint = openMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{
		endpoint: endpoint,
		http:     newRequester("openmeteo-geocode", client, breakerThreshold),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return "openmeteo"
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	const op = "geocode"

	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := g.http.getJSON(ctx, op, g.endpoint, values, &payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, weather.NewError(weather.KindCityNotFound, op, fmt.Errorf("no match for %q", city))
	}

	r := payload.Results[0]
	return weather.NewCoordinates(r.Latitude, r.Longitude), nil
}

// OpenMeteoForecaster fetches hourly temperature and WMO weather codes from Open-Meteo.
type OpenMeteoForecaster struct {
	baseURL string
	http    *requester
}

func NewOpenMeteoForecaster(client *http.Client, baseURL string, breakerThreshold uint32) *OpenMeteoForecaster {
	if baseURL == "" {
		baseURL = openMeteoForecastURL
	}
	return &OpenMeteoForecaster{
		baseURL: baseURL,
		http:    newRequester("openmeteo-forecast", client, breakerThreshold),
	}
}

func (f *OpenMeteoForecaster) Name() string {
	return "openmeteo"
}

func (f *OpenMeteoForecaster) FetchHourly(ctx context.Context, at weather.Coordinates) ([]weather.Sample, error) {
	const op = "fetch hourly"

	values := url.Values{}
	values.Set("latitude", formatCoord(at.Lat))
	values.Set("longitude", formatCoord(at.Lon))
	values.Set("hourly", "temperature_2m,weather_code")
	values.Set("timeformat", "unixtime")

	var payload struct {
		Hourly *struct {
			Time          []int64   `json:"time"`
			Temperature2M []float64 `json:"temperature_2m"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := f.http.getJSON(ctx, op, f.baseURL, values, &payload); err != nil {
		return nil, err
	}
	if payload.Hourly == nil {
		return nil, weather.NewError(weather.KindRequest, op, errors.New("response has no hourly field"))
	}

	h := payload.Hourly
	if len(h.Temperature2M) != len(h.Time) || len(h.WeatherCode) != len(h.Time) {
		return nil, weather.NewError(weather.KindRequest, op, fmt.Errorf(
			"hourly arrays differ in length: time=%d temperature=%d code=%d",
			len(h.Time), len(h.Temperature2M), len(h.WeatherCode)))
	}

	samples := make([]weather.Sample, 0, len(h.Time))
	for i, ts := range h.Time {
		samples = append(samples, weather.Sample{
			Time:        time.Unix(ts, 0).UTC(),
			Temperature: h.Temperature2M[i],
			Description: describeWMOCode(h.WeatherCode[i]),
		})
	}
	return samples, nil
}

var wmoDescriptions = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "depositing rime fog",
	51: "light drizzle", 53: "moderate drizzle", 55: "dense drizzle",
	56: "light freezing drizzle", 57: "dense freezing drizzle",
	61: "slight rain", 63: "moderate rain", 65: "heavy rain",
	66: "light freezing rain", 67: "heavy freezing rain",
	71: "slight snow fall", 73: "moderate snow fall", 75: "heavy snow fall", 77: "snow grains",
	80: "slight rain showers", 81: "moderate rain showers", 82: "violent rain showers",
	85: "slight snow showers", 86: "heavy snow showers",
	95: "thunderstorm", 96: "thunderstorm with slight hail", 99: "thunderstorm with heavy hail",
}

func describeWMOCode(code int) string {
	if d, ok := wmoDescriptions[code]; ok {
		return d
	}
	return fmt.Sprintf("weather code %d", code)
}
