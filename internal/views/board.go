// Package views keeps the latest derived views and status text published by the
// orchestrator, for the presentation layer to read.
package views

import (
	"sync"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

// Snapshot is a copy of the board's state.
type Snapshot struct {
	State        string          `json:"state"`
	Status       string          `json:"status"`
	LastAction   weather.Action  `json:"lastAction,omitempty"`
	LastActionID string          `json:"lastActionId,omitempty"`
	LastError    string          `json:"lastError,omitempty"`
	AverageLabel string          `json:"averageLabel"`
	Average      weather.Average `json:"average"`
	Series       weather.Series  `json:"series"`
	ChartMessage string          `json:"chartMessage,omitempty"`
	RefreshedAt  time.Time       `json:"refreshedAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// InitialStatus is shown until the first user action reports its outcome.
const InitialStatus = "Ready"

// Board is a weather.Observer that remembers the most recent views and status.
type Board struct {
	mu sync.RWMutex

	state   weather.State
	status  string
	action  weather.Action
	id      string
	lastErr weather.Kind
	errText string
	views   weather.Views
	updated time.Time
}

var _ weather.Observer = (*Board)(nil)

func NewBoard() *Board {
	return &Board{
		state:  weather.StateIdle,
		status: InitialStatus,
		views: weather.Views{Series: weather.Series{}},
	}
}

func (b *Board) Notify(e weather.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = e.State
	b.updated = e.At

	// background refreshes only move the views; the last action's outcome stays visible
	if !e.Background {
		b.action = e.Action
		b.id = e.ActionID
		if e.Status != "" {
			b.status = e.Status
		}

		switch {
		case e.Err != nil:
			b.lastErr = weather.KindOf(e.Err)
			b.errText = e.Err.Error()
		case e.State == weather.StateIdle:
			b.lastErr = weather.KindUnknown
			b.errText = ""
		}
	}

	if e.Views != nil {
		v := *e.Views
		if v.Series == nil {
			v.Series = weather.Series{}
		}
		b.views = v
	}
}

// Views returns the last published views.
func (b *Board) Views() weather.Views {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.views
}

// Status returns the last status line.
func (b *Board) Status() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// LastErrorKind returns the kind of the error the most recent action ended with, or
// KindUnknown if it succeeded.
func (b *Board) LastErrorKind() weather.Kind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		State:        b.state.String(),
		Status:       b.status,
		LastAction:   b.action,
		LastActionID: b.id,
		LastError:    b.errText,
		AverageLabel: b.views.Average.Label(),
		Average:      b.views.Average,
		Series:       b.views.Series,
		ChartMessage: b.views.ChartMessage(),
		RefreshedAt:  b.views.RefreshedAt,
		UpdatedAt:    b.updated,
	}
}
