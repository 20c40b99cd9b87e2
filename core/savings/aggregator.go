package savings

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/verdantlabs/savings/core/logger"
	"github.com/verdantlabs/savings/core/model"
	"github.com/verdantlabs/savings/core/timeparse"
	"github.com/verdantlabs/savings/core/timezone"
)

var (
	// ErrDeviceNotFound indicates the queried device id is not in the
	// loaded device set.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrInvalidRange indicates the start or end datetime could not be
	// parsed in the device's timezone.
	ErrInvalidRange = errors.New("invalid datetime range")
)

// boundaryLayouts are accepted for query start/end values. They carry no
// offset; both boundaries are interpreted in the device's zone.
var boundaryLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Source provides read access to the loaded datasets.
type Source interface {
	Device(id int) (model.Device, bool)
	RecordsByDevice(id int) []model.SavingsRecord
}

// Record is a savings record annotated with a normalized timestamp field
// mirroring the raw device_timestamp, as the API contract requires.
type Record struct {
	model.SavingsRecord
	Timestamp string `json:"timestamp"`
}

// Totals summarizes a filtered record set. Carbon sums are converted from
// the source unit to tonnes; fuel sums are reported unconverted.
type Totals struct {
	TotalCarbon   float64 `json:"totalCarbon"`
	TotalFuel     float64 `json:"totalFuel"`
	MonthlyCarbon float64 `json:"monthlyCarbon"`
	MonthlyFuel   float64 `json:"monthlyFuel"`
	LastMonth     string  `json:"lastMonth"`
}

// Result is the full outcome of a savings query.
type Result struct {
	Records []Record `json:"data"`
	Totals  Totals   `json:"totals"`
}

// Aggregator filters savings records by device and inclusive datetime range
// and computes total and calendar-month rollups.
type Aggregator struct {
	src  Source
	norm *timeparse.Normalizer
}

// New returns an Aggregator reading from src. Per-record timestamp parse
// failures are logged through log and never abort a query.
func New(src Source, log logger.Logger) *Aggregator {
	return &Aggregator{src: src, norm: timeparse.New(log)}
}

// Query returns the device's records whose normalized timestamp falls in
// [start, end], both endpoints included, measured in the device's timezone,
// together with total and end-month rollups. It returns ErrDeviceNotFound
// or ErrInvalidRange on bad input and never a partial result.
func (a *Aggregator) Query(deviceID int, startRaw, endRaw string) (*Result, error) {
	dev, ok := a.src.Device(deviceID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrDeviceNotFound, deviceID)
	}
	loc := timezone.Location(dev.Timezone)

	start, err := parseBoundary(startRaw, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidRange, startRaw)
	}
	end, err := parseBoundary(endRaw, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidRange, endRaw)
	}

	endLocal := end.In(loc)
	res := &Result{Records: []Record{}}
	var carbon, fuel, monthCarbon, monthFuel []float64
	for _, rec := range a.src.RecordsByDevice(deviceID) {
		t, err := a.norm.Normalize(rec.DeviceTimestamp, loc)
		if err != nil {
			// excluded, diagnostics already emitted by the normalizer
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		res.Records = append(res.Records, Record{SavingsRecord: rec, Timestamp: rec.DeviceTimestamp})
		carbon = append(carbon, rec.CarbonSaved)
		fuel = append(fuel, rec.FueldSaved)
		local := t.In(loc)
		if local.Year() == endLocal.Year() && local.Month() == endLocal.Month() {
			monthCarbon = append(monthCarbon, rec.CarbonSaved)
			monthFuel = append(monthFuel, rec.FueldSaved)
		}
	}

	res.Totals = Totals{
		TotalCarbon:   floats.Sum(carbon) / 1000,
		TotalFuel:     floats.Sum(fuel),
		MonthlyCarbon: floats.Sum(monthCarbon) / 1000,
		MonthlyFuel:   floats.Sum(monthFuel),
		LastMonth:     endLocal.Format("2006-01"),
	}
	return res, nil
}

func parseBoundary(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range boundaryLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", raw)
}
