package metrics

import (
	"fmt"

	"github.com/verdantlabs/savings/core/factory"
	coremetrics "github.com/verdantlabs/savings/core/metrics"
)

// NewSink builds a single sink from the configured list, fanning out with a
// MultiSink when more than one is enabled. An empty list yields a NopSink.
func NewSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	for _, mc := range cfg.Sinks {
		s, err := newSink(mc)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %q: %w", mc.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}

func newSink(mc factory.ModuleConfig) (coremetrics.Sink, error) {
	switch mc.Type {
	case "nop", "":
		return coremetrics.NopSink{}, nil
	case "prometheus":
		return NewPromSink()
	case "influx":
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(mc.Conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown sink type")
	}
}
