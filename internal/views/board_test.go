package views

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-history/internal/weather"
)

func TestBoardStartsEmpty(t *testing.T) {
	b := NewBoard()
	s := b.Snapshot()

	assert.Equal(t, "idle", s.State)
	assert.Equal(t, "Average Temperature: N/A", s.AverageLabel)
	assert.Equal(t, weather.ChartPlaceholder, s.ChartMessage)
	assert.NotNil(t, s.Series)
}

func TestBoardTracksLatestViews(t *testing.T) {
	b := NewBoard()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := weather.Views{
		Average: weather.Average{Value: 11.5, Valid: true},
		Series:  weather.Series{"Paris": {{Timestamp: at, Temperature: 11.5}}},
	}

	b.Notify(weather.Event{ActionID: "a1", Action: weather.ActionAddCity, State: weather.StateFetching, Status: "Fetching weather data for Paris..."})
	assert.Equal(t, "fetching", b.Snapshot().State)

	b.Notify(weather.Event{ActionID: "a1", Action: weather.ActionAddCity, State: weather.StateIdle, Views: &v,
		Status: "Weather data for Paris has been stored in the database.", At: at})

	s := b.Snapshot()
	assert.Equal(t, "idle", s.State)
	assert.Equal(t, "a1", s.LastActionID)
	assert.Equal(t, "Average Temperature: 11.50°C", s.AverageLabel)
	assert.Empty(t, s.ChartMessage)
	assert.Equal(t, at, s.UpdatedAt)
	assert.Equal(t, "Weather data for Paris has been stored in the database.", b.Status())
}

func TestBoardKeepsViewsOnFailure(t *testing.T) {
	b := NewBoard()
	v := weather.Views{Average: weather.Average{Value: 3, Valid: true}, Series: weather.Series{}}
	b.Notify(weather.Event{State: weather.StateIdle, Views: &v, Status: "ok"})

	err := weather.NewError(weather.KindCityNotFound, "geocode", errors.New("no match"))
	b.Notify(weather.Event{State: weather.StateFailed, Err: err, Status: "City not found."})
	b.Notify(weather.Event{State: weather.StateIdle, Err: err, Status: "City not found."})

	assert.Equal(t, weather.KindCityNotFound, b.LastErrorKind())
	assert.Equal(t, "City not found.", b.Status())
	assert.Equal(t, v.Average, b.Views().Average)

	b.Notify(weather.Event{State: weather.StateIdle, Status: "Displayed the temperature chart."})
	assert.Equal(t, weather.KindUnknown, b.LastErrorKind())
	assert.Empty(t, b.Snapshot().LastError)
}

func TestBoardBackgroundEventsOnlyMoveViews(t *testing.T) {
	b := NewBoard()
	err := weather.NewError(weather.KindCityNotFound, "geocode", errors.New("no match"))
	b.Notify(weather.Event{ActionID: "a1", Action: weather.ActionAddCity, State: weather.StateIdle, Err: err, Status: "City not found."})

	v := weather.Views{Average: weather.Average{Value: 4, Valid: true}, Series: weather.Series{}}
	b.Notify(weather.Event{ActionID: "a2", Action: weather.ActionRefresh, State: weather.StateRefreshing, Background: true})
	b.Notify(weather.Event{ActionID: "a2", Action: weather.ActionRefresh, State: weather.StateIdle, Views: &v, Background: true})

	s := b.Snapshot()
	assert.Equal(t, "City not found.", s.Status)
	assert.Equal(t, "a1", s.LastActionID)
	assert.NotEmpty(t, s.LastError)
	assert.Equal(t, weather.KindCityNotFound, b.LastErrorKind())
	assert.Equal(t, "Average Temperature: 4.00°C", s.AverageLabel)
}

func TestNewBoardStartsReady(t *testing.T) {
	b := NewBoard()
	v := weather.Views{Series: weather.Series{}, RefreshedAt: time.Now()}
	b.Notify(weather.Event{State: weather.StateIdle, Views: &v, Background: true})

	assert.Equal(t, InitialStatus, b.Status())
	assert.Equal(t, weather.KindUnknown, b.LastErrorKind())
}
