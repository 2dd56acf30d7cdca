package weather

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TimestampLayout is the textual form a sample's forecast hour is persisted in.
const TimestampLayout = "2006-01-02 15:04:05"

// ChartPlaceholder is shown in place of the chart when no series exist.
const ChartPlaceholder = "No data available"

// Sample is one hourly forecast observation as returned by a provider.
// Samples within one fetch keep the provider's order.
type Sample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperatureC"`
	Description string    `json:"description"`
}

// Coordinates is a geocoded position, rounded to two decimal places.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinates rounds lat/lon to two decimal places.
func NewCoordinates(lat, lon float64) Coordinates {
	return Coordinates{Lat: round2(lat), Lon: round2(lon)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SeriesPoint is a single (timestamp, temperature) pair of a city's series.
type SeriesPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureC"`
}

// Series maps a city name (as entered, case-sensitive) to its points ordered by timestamp.
type Series map[string][]SeriesPoint

// Cities returns the city names in ascending order.
func (s Series) Cities() []string {
	cities := make([]string, 0, len(s))
	for c := range s {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	return cities
}

// Len returns the total number of points over all cities.
func (s Series) Len() int {
	n := 0
	for _, pts := range s {
		n += len(pts)
	}
	return n
}

// Average is the mean temperature over every stored sample.
// Valid is false when the store holds no rows.
type Average struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Label renders the average the way the aggregate label shows it.
func (a Average) Label() string {
	if !a.Valid {
		return "Average Temperature: N/A"
	}
	return fmt.Sprintf("Average Temperature: %.2f°C", a.Value)
}

// Views holds the derived, read-only views over the store.
type Views struct {
	Average     Average   `json:"average"`
	Series      Series    `json:"series"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// ChartMessage returns the placeholder text when there is nothing to chart.
func (v Views) ChartMessage() string {
	if len(v.Series) == 0 {
		return ChartPlaceholder
	}
	return ""
}
