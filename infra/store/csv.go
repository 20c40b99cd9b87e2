package store

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	coremetrics "github.com/verdantlabs/savings/core/metrics"
	"github.com/verdantlabs/savings/core/model"
	"github.com/verdantlabs/savings/core/timezone"
	"github.com/verdantlabs/savings/infra/logger"
)

const (
	devicesFile = "devices.csv"
	savingsFile = "savings.csv"
)

// Dataset is the immutable in-memory view of the two source files. It is
// built once before the API accepts traffic and never mutated afterwards,
// so handlers share it without locking.
type Dataset struct {
	devices  []model.Device
	byID     map[int]model.Device
	records  []model.SavingsRecord
	byDevice map[int][]model.SavingsRecord
}

// Devices returns the loaded device set in file order.
func (d *Dataset) Devices() []model.Device { return d.devices }

// Device looks up a device by id.
func (d *Dataset) Device(id int) (model.Device, bool) {
	dev, ok := d.byID[id]
	return dev, ok
}

// RecordsByDevice returns the savings records attributed to the device, in
// file order.
func (d *Dataset) RecordsByDevice(id int) []model.SavingsRecord {
	return d.byDevice[id]
}

// Records returns every loaded savings record.
func (d *Dataset) Records() []model.SavingsRecord { return d.records }

// Load builds a Dataset from devices.csv and savings.csv under dir. A
// missing directory or file leaves the corresponding collection empty and
// the process serving; no row-level failure is fatal.
func Load(dir string, log logger.Logger, sink coremetrics.Sink) *Dataset {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	d := &Dataset{
		byID:     map[int]model.Device{},
		byDevice: map[int][]model.SavingsRecord{},
	}
	d.loadDevices(filepath.Join(dir, devicesFile), log, sink)
	d.loadSavings(filepath.Join(dir, savingsFile), log, sink)
	return d
}

func (d *Dataset) loadDevices(path string, log logger.Logger, sink coremetrics.Sink) {
	rows, header, ok := readCSV(path, log)
	if !ok {
		return
	}
	skipped := 0
	for _, row := range rows {
		id, err := strconv.Atoi(field(row, header, "id"))
		if err != nil {
			log.Warnf("devices: non-numeric id %q, stored as sentinel", field(row, header, "id"))
			id = model.SentinelID
			skipped++
		}
		if _, dup := d.byID[id]; dup && id != model.SentinelID {
			// first row wins
			log.Warnf("devices: duplicate id %d, keeping first occurrence", id)
			skipped++
			continue
		}
		tz := field(row, header, "timezone")
		resolved := timezone.Resolve(tz)
		if resolved != tz {
			log.Warnf("devices: unknown timezone %q for id %d, using %s", tz, id, resolved)
		}
		dev := model.Device{ID: id, Name: field(row, header, "name"), Timezone: resolved}
		d.devices = append(d.devices, dev)
		if id != model.SentinelID {
			d.byID[id] = dev
		}
	}
	log.Infof("loaded %d devices from %s", len(d.devices), path)
	if err := sink.RecordLoad(coremetrics.LoadEvent{File: devicesFile, Rows: len(d.devices), Skipped: skipped, Time: time.Now()}); err != nil {
		log.Errorf("record load event: %v", err)
	}
}

func (d *Dataset) loadSavings(path string, log logger.Logger, sink coremetrics.Sink) {
	rows, header, ok := readCSV(path, log)
	if !ok {
		return
	}
	skipped := 0
	for _, row := range rows {
		id, err := strconv.Atoi(field(row, header, "device_id"))
		if err != nil {
			log.Warnf("savings: non-numeric device_id %q, stored as sentinel", field(row, header, "device_id"))
			id = model.SentinelID
			skipped++
		}
		rec := model.SavingsRecord{
			DeviceID:        id,
			DeviceTimestamp: field(row, header, "device_timestamp"),
			CarbonSaved:     parseFloat(field(row, header, "carbon_saved"), log),
			FueldSaved:      parseFloat(field(row, header, "fueld_saved"), log),
		}
		d.records = append(d.records, rec)
		d.byDevice[id] = append(d.byDevice[id], rec)
	}
	log.Infof("loaded %d savings records from %s", len(d.records), path)
	if err := sink.RecordLoad(coremetrics.LoadEvent{File: savingsFile, Rows: len(d.records), Skipped: skipped, Time: time.Now()}); err != nil {
		log.Errorf("record load event: %v", err)
	}
}

// readCSV reads a header-delimited file into cleaned rows and a column
// index. ok is false when the file cannot be opened or has no header.
func readCSV(path string, log logger.Logger) ([][]string, map[string]int, bool) {
	f, err := os.Open(path)
	if err != nil {
		log.Warnf("cannot open %s, collection left empty: %v", path, err)
		return nil, nil, false
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("close %s: %v", path, err)
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	head, err := r.Read()
	if err != nil {
		log.Warnf("cannot read header of %s: %v", path, err)
		return nil, nil, false
	}
	header := make(map[string]int, len(head))
	for i, h := range head {
		header[strings.ToLower(clean(h))] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("%s: skipping malformed row: %v", path, err)
			continue
		}
		for i := range row {
			row[i] = clean(row[i])
		}
		rows = append(rows, row)
	}
	return rows, header, true
}

func field(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// clean trims surrounding whitespace and stray quote characters.
func clean(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}

// parseFloat coerces malformed, negative, or non-finite values to 0.
func parseFloat(s string, log logger.Logger) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if s != "" {
			log.Warnf("non-numeric value %q coerced to 0", s)
		}
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
