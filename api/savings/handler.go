package savings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/verdantlabs/savings/api"
	"github.com/verdantlabs/savings/core/logger"
	coremetrics "github.com/verdantlabs/savings/core/metrics"
	coresavings "github.com/verdantlabs/savings/core/savings"
)

// Error bodies fixed by the HTTP contract.
const (
	msgMissingParams = "deviceId, startDateTime, and endDateTime are required"
	msgNotFound      = "Device not found"
	msgInvalidRange  = "Invalid startDateTime or endDateTime format"
)

// Querier runs a savings aggregation for one device and datetime range.
type Querier interface {
	Query(deviceID int, startRaw, endRaw string) (*coresavings.Result, error)
}

// NewQueryHandler returns an HTTP handler exposing filtered savings via
// GET /api/savings?deviceId=&startDateTime=&endDateTime=.
func NewQueryHandler(q Querier, sink coremetrics.Sink, log logger.Logger) http.Handler {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		deviceID := r.URL.Query().Get("deviceId")
		start := r.URL.Query().Get("startDateTime")
		end := r.URL.Query().Get("endDateTime")
		if deviceID == "" || start == "" || end == "" {
			api.WriteError(w, http.StatusBadRequest, msgMissingParams)
			return
		}
		id, err := strconv.Atoi(deviceID)
		if err != nil {
			// a non-integer id cannot name any loaded device
			api.WriteError(w, http.StatusNotFound, msgNotFound)
			return
		}

		began := time.Now()
		res, err := q.Query(id, start, end)
		status := "ok"
		records := 0
		switch {
		case errors.Is(err, coresavings.ErrDeviceNotFound):
			status = "not_found"
			api.WriteError(w, http.StatusNotFound, msgNotFound)
		case errors.Is(err, coresavings.ErrInvalidRange):
			status = "invalid_range"
			api.WriteError(w, http.StatusBadRequest, msgInvalidRange)
		case err != nil:
			status = "error"
			api.WriteError(w, http.StatusInternalServerError, err.Error())
		default:
			records = len(res.Records)
			if err := api.WriteJSON(w, res); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
		if serr := sink.RecordQuery(coremetrics.QueryEvent{
			DeviceID: id,
			Records:  records,
			Status:   status,
			Duration: time.Since(began),
			Time:     began,
		}); serr != nil && log != nil {
			log.Errorf("record query event: %v", serr)
		}
	})
}
