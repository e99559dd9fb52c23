package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/logger"

	"github.com/gorilla/mux"
)

const (
	MetricsPath         = "/metrics"
	ExporterMetricsPath = "/exporter/metrics"

	shutdownTimeout = time.Minute
)

type Config struct {
	Address string
	Port    uint16

	// Metrics serves GET /metrics.
	Metrics http.Handler
	// ExporterMetrics, when set, serves the exporter's own metrics.
	ExporterMetrics http.Handler
}

type Server struct {
	config Config
	router *mux.Router
	http   *http.Server
}

func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:              net.JoinHostPort(config.Address, strconv.Itoa(int(config.Port))),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Handle(MetricsPath, s.config.Metrics).Methods(http.MethodGet)
	if s.config.ExporterMetrics != nil {
		s.router.Handle(ExporterMetricsPath, s.config.ExporterMetrics).Methods(http.MethodGet)
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	links := fmt.Sprintf(`<a href="%s">%s</a>`, MetricsPath, MetricsPath)
	if s.config.ExporterMetrics != nil {
		links += fmt.Sprintf("\n"+`<a href="%s">%s</a>`, ExporterMetricsPath, ExporterMetricsPath)
	}
	fmt.Fprintf(w, `<h1>Borg Exporter</h1><pre>%s</pre>`, links)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully. Scrapes
// still waiting on a locked repository see their request context cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Started listening on %s", ln.Addr())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown requested, gracefully cleaning up for %s", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
