package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/verdantlabs/savings/core/logger"
)

// Strategy is one attempt at interpreting a raw timestamp. Strategies are
// tried in order and the first success wins.
type Strategy struct {
	Name  string
	Parse func(raw string, loc *time.Location) (time.Time, bool)
}

// isoLayouts cover strict ISO-8601 forms without a zone offset. Offsets, when
// present, are handled by RFC3339 before these are tried.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// lenientLayouts cover the loose conventions observed in source datasets.
// Day-first slash forms come before month-first so unambiguous day-first
// input (day > 12) wins.
var lenientLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
}

func parseISO(raw string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLenient(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range lenientLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseEpochUTC treats a bare number as seconds (or milliseconds, for
// 13-digit values) since the Unix epoch.
func parseEpochUTC(raw string, _ *time.Location) (time.Time, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	if len(strings.TrimLeft(raw, "-")) >= 13 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}

// Normalizer turns raw timestamp strings into instants using an ordered
// list of parser strategies.
type Normalizer struct {
	strategies []Strategy
	log        logger.Logger
}

// New returns a Normalizer with the default strategy chain: strict ISO-8601
// first, then lenient layouts in the record's zone, then a UTC wall-clock
// last resort. A nil log disables diagnostics.
func New(log logger.Logger) *Normalizer {
	if log == nil {
		log = nopLogger{}
	}
	return &Normalizer{
		strategies: []Strategy{
			{Name: "iso8601", Parse: parseISO},
			{Name: "lenient", Parse: parseLenient},
			{Name: "epoch-utc", Parse: parseEpochUTC},
		},
		log: log,
	}
}

// Normalize parses raw into an instant. Naive forms (no offset in the
// string) are interpreted in loc. An error means no strategy matched; the
// caller is expected to exclude the record, not to abort.
func (n *Normalizer) Normalize(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, s := range n.strategies {
		t, ok := s.Parse(raw, loc)
		if !ok {
			continue
		}
		if s.Name == "epoch-utc" {
			n.log.Warnf("timestamp %q interpreted as UTC epoch", raw)
		}
		return t, nil
	}
	n.log.Warnf("unparseable timestamp %q, record excluded", raw)
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
