package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

const weatherAPIForecastURL = "https://api.weatherapi.com/v1/forecast.json"

// WeatherAPIForecaster fetches hourly forecasts from WeatherAPI.com.
type WeatherAPIForecaster struct {
	apiKey  string
	baseURL string
	days    int
	http    *requester
}

func NewWeatherAPIForecaster(client *http.Client, apiKey, baseURL string, breakerThreshold uint32) *WeatherAPIForecaster {
	if baseURL == "" {
		baseURL = weatherAPIForecastURL
	}
	return &WeatherAPIForecaster{
		apiKey:  apiKey,
		baseURL: baseURL,
		days:    2,
		http:    newRequester("weatherapi-forecast", client, breakerThreshold),
	}
}

func (f *WeatherAPIForecaster) Name() string {
	return "weatherapi"
}

func (f *WeatherAPIForecaster) FetchHourly(ctx context.Context, at weather.Coordinates) ([]weather.Sample, error) {
	const op = "fetch hourly"
	if f.apiKey == "" {
		return nil, weather.NewError(weather.KindRequest, op, errors.New("weatherapi api key is not configured"))
	}

	values := url.Values{}
	values.Set("key", f.apiKey)
	// WeatherAPI accepts "lat,lon" in q.
	values.Set("q", fmt.Sprintf("%s,%s", formatCoord(at.Lat), formatCoord(at.Lon)))
	values.Set("days", fmt.Sprintf("%d", f.days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	var payload struct {
		Forecast *struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64   `json:"time_epoch"`
					TempC     float64 `json:"temp_c"`
					Condition struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := f.http.getJSON(ctx, op, f.baseURL, values, &payload); err != nil {
		return nil, err
	}
	if payload.Forecast == nil {
		return nil, weather.NewError(weather.KindRequest, op, errors.New("response has no forecast field"))
	}

	var samples []weather.Sample
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			samples = append(samples, weather.Sample{
				Time:        time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature: h.TempC,
				Description: strings.ToLower(strings.TrimSpace(h.Condition.Text)),
			})
		}
	}
	return samples, nil
}
