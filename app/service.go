package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/verdantlabs/savings/api"
	apidevices "github.com/verdantlabs/savings/api/devices"
	apisavings "github.com/verdantlabs/savings/api/savings"
	"github.com/verdantlabs/savings/config"
	coremetrics "github.com/verdantlabs/savings/core/metrics"
	"github.com/verdantlabs/savings/core/savings"
	"github.com/verdantlabs/savings/infra/logger"
	"github.com/verdantlabs/savings/infra/metrics"
	"github.com/verdantlabs/savings/infra/store"
)

// Service wires the loaded dataset, the aggregator, and the API server.
type Service struct {
	Dataset *store.Dataset
	srv     *api.Server
	sink    coremetrics.Sink
	log     logger.Logger
}

// New creates a Service from the configuration. The dataset is fully loaded
// here, before the server ever accepts a request.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	dataset := store.Load(cfg.Data.Dir, logger.New("store"), sink)
	agg := savings.New(dataset, logger.New("aggregator"))

	handlers := map[string]http.Handler{
		"/api/devices": apidevices.NewListHandler(dataset),
		"/api/savings": apisavings.NewQueryHandler(agg, sink, logger.New("api")),
	}
	srv := api.NewServer(cfg.Server.Port, cfg.Server.StaticDir, handlers, logger.New("api"))

	return &Service{Dataset: dataset, srv: srv, sink: sink, log: logg}, nil
}

// Addr returns the server's listening address once Run has started it.
func (s *Service) Addr() string { return s.srv.Addr() }

// Run starts the API server and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.srv.Start(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
