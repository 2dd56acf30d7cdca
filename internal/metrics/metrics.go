// Package metrics exposes orchestrator activity as Prometheus metrics.
package metrics

import (
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-history/internal/weather"
)

const namespace = "weather_history"

// Collector is a weather.Observer that counts actions and stored samples.
type Collector struct {
	actions  *prometheus.CounterVec
	failures *prometheus.CounterVec
	inserted prometheus.Counter
	deleted  prometheus.Counter
	average  prometheus.Gauge
	points   prometheus.Gauge
}

var _ weather.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Completed actions by action and outcome.",
		}, []string{"action", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_failures_total",
			Help:      "Failed actions by error kind.",
		}, []string{"action", "kind"}),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_inserted_total",
			Help:      "Hourly samples written to the store.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_deleted_total",
			Help:      "Hourly samples removed by clear.",
		}),
		average: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_temperature_celsius",
			Help:      "Mean temperature over all stored samples as of the last refresh. NaN when empty.",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_points",
			Help:      "Number of points across all city series as of the last refresh.",
		}),
	}

	for _, m := range []prometheus.Collector{c.actions, c.failures, c.inserted, c.deleted, c.average, c.points} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Notify records the closing event of every action.
func (c *Collector) Notify(e weather.Event) {
	if e.State != weather.StateIdle {
		return
	}

	// rows stay committed when a refresh fails after the insert
	if e.Inserted > 0 {
		c.inserted.Add(float64(e.Inserted))
	}
	if e.Deleted > 0 {
		c.deleted.Add(float64(e.Deleted))
	}

	action := string(e.Action)
	if e.Err != nil {
		c.actions.WithLabelValues(action, "failure").Inc()
		c.failures.WithLabelValues(action, weather.KindOf(e.Err).String()).Inc()
		return
	}
	c.actions.WithLabelValues(action, "success").Inc()

	if e.Views != nil {
		if e.Views.Average.Valid {
			c.average.Set(e.Views.Average.Value)
		} else {
			c.average.Set(math.NaN())
		}
		c.points.Set(float64(e.Views.Series.Len()))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
