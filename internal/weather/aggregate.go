package weather

import "time"

// Row is a persisted sample read back from a store.
type Row struct {
	ID          uint64
	City        string
	Temperature float64
	Description string
	Timestamp   time.Time
}

// GroupSeries folds rows into per-city series. Rows are expected to be sorted by city then
// timestamp already; the order within each city is kept as given.
func GroupSeries(rows []Row) Series {
	series := make(Series)
	for _, r := range rows {
		series[r.City] = append(series[r.City], SeriesPoint{
			Timestamp:   r.Timestamp,
			Temperature: r.Temperature,
		})
	}
	return series
}

// MeanTemperature returns the arithmetic mean of the given temperatures.
func MeanTemperature(temps []float64) Average {
	if len(temps) == 0 {
		return Average{}
	}

	var sum float64
	for _, t := range temps {
		sum += t
	}
	return Average{Value: sum / float64(len(temps)), Valid: true}
}
