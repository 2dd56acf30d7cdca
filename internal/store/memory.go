package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Timestamps are truncated to whole seconds in loc, as the SQL store's text column would.
type MemoryStore struct {
	mu sync.RWMutex

	rows   []weather.Row
	nextID uint64
	loc    *time.Location
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.UTC
	}
	return &MemoryStore{loc: loc, nextID: 1}
}

func (s *MemoryStore) EnsureSchema(context.Context) error {
	return nil
}

// InsertSamples appends one row per sample. IDs keep growing across ClearAll.
func (s *MemoryStore) InsertSamples(_ context.Context, city string, samples []weather.Sample) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, smp := range samples {
		s.rows = append(s.rows, weather.Row{
			ID:          s.nextID,
			City:        city,
			Temperature: smp.Temperature,
			Description: smp.Description,
			Timestamp:   smp.Time.In(s.loc).Truncate(time.Second),
		})
		s.nextID++
	}
	return len(samples), nil
}

func (s *MemoryStore) ClearAll(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.rows))
	s.rows = nil
	return n, nil
}

func (s *MemoryStore) AverageTemperature(context.Context) (weather.Average, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	temps := make([]float64, 0, len(s.rows))
	for _, r := range s.rows {
		temps = append(temps, r.Temperature)
	}
	return weather.MeanTemperature(temps), nil
}

func (s *MemoryStore) AllSeriesGroupedByCity(context.Context) (weather.Series, error) {
	s.mu.RLock()
	rows := make([]weather.Row, len(s.rows))
	copy(rows, s.rows)
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].City != rows[j].City {
			return rows[i].City < rows[j].City
		}
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].ID < rows[j].ID
	})
	return weather.GroupSeries(rows), nil
}

func (s *MemoryStore) CountSamples(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), nil
}
