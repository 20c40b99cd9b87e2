package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coremetrics "github.com/verdantlabs/savings/core/metrics"
)

func TestInfluxSink_RecordQuery(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	ev := coremetrics.QueryEvent{
		DeviceID: 7,
		Records:  2,
		Status:   "ok",
		Duration: 3 * time.Millisecond,
		Time:     time.Now(),
	}
	if err := sink.RecordQuery(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.Contains(body, "savings_query") || !strings.Contains(body, `device_id=7`) {
		t.Errorf("unexpected line protocol: %s", body)
	}
}

func TestInfluxSink_FallbackToNop(t *testing.T) {
	// No server listening: the health check fails and a NopSink is returned.
	sink := NewInfluxSinkWithFallback("http://127.0.0.1:1", "t", "o", "b")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}

func TestNewSink_Factory(t *testing.T) {
	s, err := NewSink(coremetrics.Config{})
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
}
