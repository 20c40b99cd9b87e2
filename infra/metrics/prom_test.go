package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/verdantlabs/savings/core/metrics"
)

func TestPromSink_RecordQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.QueryEvent{
		DeviceID: 1,
		Records:  3,
		Status:   "ok",
		Duration: 15 * time.Millisecond,
		Time:     time.Now(),
	}
	if err := sink.RecordQuery(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP savings_queries_total Total number of savings queries by outcome
# TYPE savings_queries_total counter
savings_queries_total{device_id="1",status="ok"} 1
`
	if err := testutil.CollectAndCompare(sink.queries, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_RecordLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.LoadEvent{File: "devices.csv", Rows: 10, Skipped: 2, Time: time.Now()}
	if err := sink.RecordLoad(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP savings_dataset_rows Rows loaded per source file at startup
# TYPE savings_dataset_rows gauge
savings_dataset_rows{file="devices.csv",result="loaded"} 10
savings_dataset_rows{file="devices.csv",result="skipped"} 2
`
	if err := testutil.CollectAndCompare(sink.rows, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
