package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdantlabs/savings/core/logger"
)

// Server hosts the JSON API, the Prometheus exposition endpoint, and the
// static asset tree. Handlers are attached by the caller so that the api
// package stays free of domain wiring.
type Server struct {
	addr      string
	staticDir string
	handlers  map[string]http.Handler
	log       logger.Logger
	srv       *http.Server
	requests  *prometheus.CounterVec
}

// NewServer creates a Server listening on port. handlers maps URL patterns
// to the domain handlers mounted under them.
func NewServer(port, staticDir string, handlers map[string]http.Handler, log logger.Logger) *Server {
	return NewServerWithRegistry(port, staticDir, handlers, log, prometheus.DefaultRegisterer)
}

// NewServerWithRegistry creates a Server and registers its request counter
// on the provided registerer. If reg is nil the default registerer is used.
func NewServerWithRegistry(port, staticDir string, handlers map[string]http.Handler, log logger.Logger, reg prometheus.Registerer) *Server {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "savings_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			log.Errorf("register request counter: %v", err)
		}
	}
	return &Server{
		addr:      net.JoinHostPort("", port),
		staticDir: staticDir,
		handlers:  handlers,
		log:       log,
		requests:  requests,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	for pattern, h := range s.handlers {
		mux.Handle(pattern, s.instrument(pattern, h))
	}
	mux.Handle("/metrics", promhttp.Handler())
	if s.staticDir != "" {
		if _, err := os.Stat(s.staticDir); err != nil {
			s.log.Warnf("static dir %s unavailable: %v", s.staticDir, err)
		}
		mux.Handle("/", s.instrument("/", http.FileServer(http.Dir(s.staticDir))))
	}
	return mux
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		reqID := uuid.NewString()
		next.ServeHTTP(rec, r)
		s.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.log.Debugw("request", map[string]any{
			"request_id": reqID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"code":       rec.code,
			"duration":   time.Since(began).String(),
		})
	})
}

// Addr returns the listening address once Start has been called.
func (s *Server) Addr() string { return s.addr }

// Start runs the HTTP server until the context is canceled, then shuts it
// down gracefully with a 5s drain timeout.
func (s *Server) Start(ctx context.Context) error {
	mux := s.routes()
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("savings API listening on %s", s.addr)
	err = s.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
