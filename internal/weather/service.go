package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates the user actions: fetch a city's forecast and store it, clear the
// store, and refresh the derived views. Actions are serialized; every action ends back in
// StateIdle.
type Service struct {
	mu     sync.Mutex
	store  Store
	client Client

	obsMu     sync.RWMutex
	observers []Observer

	now func() time.Time
}

// AddResult describes a completed AddCity action.
type AddResult struct {
	ActionID string `json:"actionId"`
	City     string `json:"city"`
	Inserted int    `json:"inserted"`
	Views    Views  `json:"views"`
}

// ClearResult describes a Clear action. Cleared is false when the caller declined.
type ClearResult struct {
	ActionID string `json:"actionId"`
	Cleared  bool   `json:"cleared"`
	Deleted  int64  `json:"deleted"`
	Views    Views  `json:"views"`
}

// NewService creates a new Service.
func NewService(store Store, client Client, observers ...Observer) *Service {
	return &Service{
		store:     store,
		client:    client,
		observers: observers,
		now:       time.Now,
	}
}

// Subscribe registers an observer for all subsequent events.
func (s *Service) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Initialize creates the schema if needed and computes the initial views.
func (s *Service) Initialize(ctx context.Context) (Views, error) {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return Views{}, err
	}
	return s.RefreshInBackground(ctx)
}

// AddCity fetches the hourly forecast for city, stores every sample and refreshes the views.
// A blank name is rejected before any network call. On a client failure nothing is stored.
func (s *Service) AddCity(ctx context.Context, city string) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.begin(ActionAddCity, city)
	result := AddResult{ActionID: a.id, City: city}

	if strings.TrimSpace(city) == "" {
		return result, a.fail(ErrEmptyCityName)
	}

	a.to(StateFetching, fmt.Sprintf("Fetching weather data for %s...", city))
	samples, err := s.client.FetchCityWeather(ctx, city)
	if err != nil {
		slog.Warn("fetch failed", "city", city, "kind", KindOf(err).String(), "error", err)
		return result, a.fail(err)
	}

	a.to(StateStoring, fmt.Sprintf("Storing %d samples for %s...", len(samples), city))
	n, err := s.store.InsertSamples(ctx, city, samples)
	if err != nil {
		slog.Error("storing samples failed", "city", city, "error", err)
		return result, a.fail(err)
	}
	result.Inserted = n
	a.event.Inserted = n

	a.to(StateRefreshing, "Refreshing views...")
	views, err := s.refresh(ctx)
	if err != nil {
		return result, a.fail(err)
	}
	result.Views = views

	slog.Info("stored weather data", "city", city, "samples", n, "action_id", a.id)
	a.done(&views, fmt.Sprintf("Weather data for %s has been stored in the database.", city))
	return result, nil
}

// Clear deletes every stored sample when confirmed is true, then refreshes the views to
// their empty states. A declined confirmation is a no-op.
func (s *Service) Clear(ctx context.Context, confirmed bool) (ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.begin(ActionClear, "")
	result := ClearResult{ActionID: a.id}

	if !confirmed {
		slog.Debug("clear declined", "action_id", a.id)
		a.done(nil, "Clear cancelled.")
		return result, nil
	}

	a.to(StateStoring, "Clearing the database...")
	deleted, err := s.store.ClearAll(ctx)
	if err != nil {
		return result, a.fail(err)
	}
	result.Cleared = true
	result.Deleted = deleted
	a.event.Deleted = deleted

	a.to(StateRefreshing, "Refreshing views...")
	views, err := s.refresh(ctx)
	if err != nil {
		return result, a.fail(err)
	}
	result.Views = views

	slog.Info("cleared weather data", "deleted", deleted, "action_id", a.id)
	a.done(&views, "The database has been cleared.")
	return result, nil
}

// RefreshViews recomputes the average and the per-city series. It never mutates the store.
func (s *Service) RefreshViews(ctx context.Context) (Views, error) {
	return s.refreshViews(ctx, false)
}

// RefreshInBackground recomputes the views like RefreshViews, but its events carry no status
// text so the last user-facing outcome stays visible.
func (s *Service) RefreshInBackground(ctx context.Context) (Views, error) {
	return s.refreshViews(ctx, true)
}

func (s *Service) refreshViews(ctx context.Context, background bool) (Views, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.begin(ActionRefresh, "")
	a.event.Background = background
	a.to(StateRefreshing, "Refreshing views...")
	views, err := s.refresh(ctx)
	if err != nil {
		if background {
			slog.Warn("background refresh failed", "error", err, "action_id", a.id)
		}
		return Views{}, a.fail(err)
	}
	a.done(&views, "Displayed the temperature chart.")
	return views, nil
}

// Average recomputes only the aggregate.
func (s *Service) Average(ctx context.Context) (Average, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.begin(ActionAverage, "")
	avg, err := s.store.AverageTemperature(ctx)
	if err != nil {
		return Average{}, a.fail(err)
	}
	status := "Calculated the average temperature."
	if !avg.Valid {
		status = "No data available to calculate."
	}
	a.done(nil, status)
	return avg, nil
}

// Series recomputes only the per-city chart series.
func (s *Service) Series(ctx context.Context) (Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.begin(ActionChart, "")
	series, err := s.store.AllSeriesGroupedByCity(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.done(nil, "Displayed the temperature chart.")
	return series, nil
}

// Count returns the number of stored samples.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountSamples(ctx)
}

func (s *Service) refresh(ctx context.Context) (Views, error) {
	avg, err := s.store.AverageTemperature(ctx)
	if err != nil {
		return Views{}, err
	}
	series, err := s.store.AllSeriesGroupedByCity(ctx)
	if err != nil {
		return Views{}, err
	}
	return Views{Average: avg, Series: series, RefreshedAt: s.now().UTC()}, nil
}

// action tracks the transitions of one user action and publishes them.
type action struct {
	s     *Service
	id    string
	event Event
}

func (s *Service) begin(kind Action, city string) *action {
	return &action{
		s:     s,
		id:    uuid.NewString(),
		event: Event{Action: kind, City: city},
	}
}

func (a *action) to(state State, status string) {
	if a.event.Background {
		status = ""
	}
	a.event.State = state
	a.event.Status = status
	a.publish()
}

func (a *action) fail(err error) error {
	a.event.Err = err
	a.to(StateFailed, UserMessage(err))
	// the closing Idle event keeps Err so observers can tell how the action ended
	a.to(StateIdle, a.event.Status)
	return err
}

func (a *action) done(views *Views, status string) {
	a.event.Views = views
	a.to(StateIdle, status)
}

func (a *action) publish() {
	e := a.event
	e.ActionID = a.id
	e.At = a.s.now().UTC()

	a.s.obsMu.RLock()
	observers := a.s.observers
	a.s.obsMu.RUnlock()

	for _, o := range observers {
		o.Notify(e)
	}
}
