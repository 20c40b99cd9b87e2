package metrics

import (
	"time"

	"github.com/verdantlabs/savings/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// QueryEvent describes one /api/savings query for observability purposes.
type QueryEvent struct {
	DeviceID int
	Records  int
	Status   string // ok, not_found, invalid_range
	Duration time.Duration
	Time     time.Time
}

// LoadEvent describes the outcome of loading one source file at startup.
type LoadEvent struct {
	File    string
	Rows    int
	Skipped int
	Time    time.Time
}

// Sink records query and load events.
type Sink interface {
	RecordQuery(ev QueryEvent) error
	RecordLoad(ev LoadEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordQuery(QueryEvent) error { return nil }
func (NopSink) RecordLoad(LoadEvent) error   { return nil }
