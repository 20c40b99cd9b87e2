package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/verdantlabs/savings/core/metrics"
)

// PromSink records query and load events in Prometheus metrics.
type PromSink struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.GaugeVec
}

// NewPromSink registers the sink's metrics on the default Prometheus
// registerer. The /metrics endpoint is served by the API server.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "savings_queries_total",
		Help: "Total number of savings queries by outcome",
	}, []string{"device_id", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "savings_query_duration_seconds",
		Help:    "Time spent filtering and aggregating one query",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "savings_dataset_rows",
		Help: "Rows loaded per source file at startup",
	}, []string{"file", "result"})

	if err := reg.Register(queries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			queries = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(rows); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			rows = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{queries: queries, duration: duration, rows: rows}, nil
}

// RecordQuery increments the query counter and observes its duration.
func (s *PromSink) RecordQuery(ev coremetrics.QueryEvent) error {
	s.queries.WithLabelValues(strconv.Itoa(ev.DeviceID), ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	return nil
}

// RecordLoad records the startup row counts for one source file.
func (s *PromSink) RecordLoad(ev coremetrics.LoadEvent) error {
	s.rows.WithLabelValues(ev.File, "loaded").Set(float64(ev.Rows))
	s.rows.WithLabelValues(ev.File, "skipped").Set(float64(ev.Skipped))
	return nil
}
