package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCoordinatesRoundsToTwoDecimals(t *testing.T) {
	c := NewCoordinates(48.856613, 2.352222)
	assert.Equal(t, Coordinates{Lat: 48.86, Lon: 2.35}, c)

	c = NewCoordinates(-33.8688, 151.2093)
	assert.Equal(t, Coordinates{Lat: -33.87, Lon: 151.21}, c)
}

func TestAverageLabel(t *testing.T) {
	assert.Equal(t, "Average Temperature: N/A", Average{}.Label())
	assert.Equal(t, "Average Temperature: 12.35°C", Average{Value: 12.345678, Valid: true}.Label())
	assert.Equal(t, "Average Temperature: 0.00°C", Average{Valid: true}.Label())
}

func TestMeanTemperature(t *testing.T) {
	assert.False(t, MeanTemperature(nil).Valid)

	avg := MeanTemperature([]float64{10, 20, 30})
	assert.True(t, avg.Valid)
	assert.InDelta(t, 20.0, avg.Value, 1e-9)
}

func TestGroupSeriesKeepsOrderPerCity(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{ID: 1, City: "Berlin", Temperature: 5, Timestamp: base},
		{ID: 2, City: "Berlin", Temperature: 6, Timestamp: base.Add(time.Hour)},
		{ID: 3, City: "Paris", Temperature: 9, Timestamp: base},
	}

	s := GroupSeries(rows)
	assert.Equal(t, []string{"Berlin", "Paris"}, s.Cities())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []SeriesPoint{
		{Timestamp: base, Temperature: 5},
		{Timestamp: base.Add(time.Hour), Temperature: 6},
	}, s["Berlin"])
}

func TestViewsChartMessage(t *testing.T) {
	assert.Equal(t, ChartPlaceholder, Views{}.ChartMessage())
	assert.Equal(t, "", Views{Series: Series{"Paris": {{Temperature: 1}}}}.ChartMessage())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
