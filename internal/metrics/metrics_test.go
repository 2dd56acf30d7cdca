package metrics

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-history/internal/weather"
)

func TestCollectorCountsClosingEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	v := weather.Views{
		Average: weather.Average{Value: 12.5, Valid: true},
		Series:  weather.Series{"Paris": make([]weather.SeriesPoint, 48)},
	}
	c.Notify(weather.Event{Action: weather.ActionAddCity, State: weather.StateFetching})
	c.Notify(weather.Event{Action: weather.ActionAddCity, State: weather.StateIdle, Inserted: 48, Views: &v})

	notFound := weather.NewError(weather.KindCityNotFound, "geocode", errors.New("no match"))
	c.Notify(weather.Event{Action: weather.ActionAddCity, State: weather.StateFailed, Err: notFound})
	c.Notify(weather.Event{Action: weather.ActionAddCity, State: weather.StateIdle, Err: notFound})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.actions.WithLabelValues("add_city", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.actions.WithLabelValues("add_city", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("add_city", "CityNotFound")))
	assert.Equal(t, 48.0, testutil.ToFloat64(c.inserted))
	assert.Equal(t, 12.5, testutil.ToFloat64(c.average))
	assert.Equal(t, 48.0, testutil.ToFloat64(c.points))

	empty := weather.Views{Series: weather.Series{}}
	c.Notify(weather.Event{Action: weather.ActionClear, State: weather.StateIdle, Deleted: 48, Views: &empty})
	assert.Equal(t, 48.0, testutil.ToFloat64(c.deleted))
	assert.True(t, math.IsNaN(testutil.ToFloat64(c.average)))
	assert.Zero(t, testutil.ToFloat64(c.points))
}

func TestNewCollectorRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.Notify(weather.Event{Action: weather.ActionRefresh, State: weather.StateIdle})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `weather_history_actions_total{action="refresh",outcome="success"} 1`)
}
