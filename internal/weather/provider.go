package weather

import (
	"context"
)

// Geocoder resolves a human-entered city name to coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, city string) (Coordinates, error)
}

// Forecaster fetches the hourly forecast at a position.
type Forecaster interface {
	Name() string
	FetchHourly(ctx context.Context, at Coordinates) ([]Sample, error)
}

// Client turns a city name into normalized hourly samples.
type Client interface {
	FetchCityWeather(ctx context.Context, city string) ([]Sample, error)
}

// Store is the contract every persistent (or in-memory) sample store satisfies.
// Implementations report failures as *Error with KindStorage.
type Store interface {
	EnsureSchema(ctx context.Context) error
	InsertSamples(ctx context.Context, city string, samples []Sample) (int, error)
	ClearAll(ctx context.Context) (int64, error)
	AverageTemperature(ctx context.Context) (Average, error)
	AllSeriesGroupedByCity(ctx context.Context) (Series, error)
	CountSamples(ctx context.Context) (int64, error)
}
