package savings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantlabs/savings/core/model"
	coresavings "github.com/verdantlabs/savings/core/savings"
)

type stubSource struct {
	devices map[int]model.Device
	records []model.SavingsRecord
}

func (s stubSource) Device(id int) (model.Device, bool) {
	d, ok := s.devices[id]
	return d, ok
}

func (s stubSource) RecordsByDevice(id int) []model.SavingsRecord {
	var out []model.SavingsRecord
	for _, r := range s.records {
		if r.DeviceID == id {
			out = append(out, r)
		}
	}
	return out
}

func newHandler() http.Handler {
	src := stubSource{
		devices: map[int]model.Device{1: {ID: 1, Name: "A", Timezone: "Asia/Kolkata"}},
		records: []model.SavingsRecord{
			{DeviceID: 1, DeviceTimestamp: "2023-06-15T10:00:00+05:30", CarbonSaved: 500, FueldSaved: 10},
		},
	}
	return NewQueryHandler(coresavings.New(src, nil), nil, nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", target, nil))
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestQueryHandler_Success(t *testing.T) {
	rr := get(t, newHandler(), "/api/savings?deviceId=1&startDateTime=2023-06-01T00:00&endDateTime=2023-06-30T23:59")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Data   []coresavings.Record `json:"data"`
		Totals coresavings.Totals   `json:"totals"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data) != 1 {
		t.Fatalf("data = %+v", out.Data)
	}
	if out.Data[0].Timestamp != "2023-06-15T10:00:00+05:30" {
		t.Fatalf("timestamp annotation = %q", out.Data[0].Timestamp)
	}
	if out.Totals.TotalCarbon != 0.5 || out.Totals.TotalFuel != 10 || out.Totals.LastMonth != "2023-06" {
		t.Fatalf("totals = %+v", out.Totals)
	}
}

func TestQueryHandler_MissingParams(t *testing.T) {
	targets := []string{
		"/api/savings",
		"/api/savings?deviceId=1",
		"/api/savings?deviceId=1&startDateTime=2023-06-01",
		"/api/savings?startDateTime=2023-06-01&endDateTime=2023-06-30",
	}
	for _, target := range targets {
		rr := get(t, newHandler(), target)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", target, rr.Code)
		}
		if got := errorBody(t, rr); got != "deviceId, startDateTime, and endDateTime are required" {
			t.Fatalf("%s: error %q", target, got)
		}
	}
}

func TestQueryHandler_UnknownDevice(t *testing.T) {
	rr := get(t, newHandler(), "/api/savings?deviceId=99&startDateTime=2023-06-01&endDateTime=2023-06-30")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if got := errorBody(t, rr); got != "Device not found" {
		t.Fatalf("error %q", got)
	}
}

func TestQueryHandler_NonIntegerDevice(t *testing.T) {
	rr := get(t, newHandler(), "/api/savings?deviceId=abc&startDateTime=2023-06-01&endDateTime=2023-06-30")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if got := errorBody(t, rr); got != "Device not found" {
		t.Fatalf("error %q", got)
	}
}

func TestQueryHandler_InvalidRange(t *testing.T) {
	rr := get(t, newHandler(), "/api/savings?deviceId=1&startDateTime=garbage&endDateTime=2023-06-30")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	if got := errorBody(t, rr); got != "Invalid startDateTime or endDateTime format" {
		t.Fatalf("error %q", got)
	}
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/savings", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}
