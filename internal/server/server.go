// Package server exposes compilation and grammar checks over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"

	"github.com/reoring/jsongram/internal/config"
	"github.com/reoring/jsongram/internal/logger"
	"github.com/reoring/jsongram/jsondec"
	"github.com/reoring/jsongram/middleware"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Server serves the HTTP API.
type Server struct {
	cfg     *config.Config
	log     *logger.Logger
	router  *mux.Router
	metrics *metrics
}

// New builds a Server and its routes. Metrics are registered on reg; a nil
// reg gets a private registry.
func New(cfg *config.Config, log *logger.Logger, reg *prometheus.Registry) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		router:  mux.NewRouter().StrictSlash(true),
		metrics: newMetrics(reg),
	}
	s.setupRoutes(reg)
	return s
}

func (s *Server) setupRoutes(reg *prometheus.Registry) {
	s.router.HandleFunc("/healthz", s.handleHealth()).Methods("GET")
	s.router.Handle("/v1/compile", s.instrument("compile", s.handleCompile())).Methods("POST")
	opts := append(s.cfg.Decode.Options(), jsondec.WithMaxBytes(s.cfg.Server.MaxBodyBytes))
	decodeCheck := middleware.Decode[checkRequest](opts...)
	s.router.Handle("/v1/check", s.instrument("check", decodeCheck(s.handleCheck()))).Methods("POST")
	if s.cfg.Server.Metrics {
		s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Handler returns the full middleware stack.
func (s *Server) Handler() http.Handler {
	n := negroni.New(negroni.NewRecovery(), negroni.HandlerFunc(s.requestLog))
	n.UseHandler(s.router)
	return n
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLog(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	id := r.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	start := time.Now()

	next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

	status := http.StatusOK
	if rw, ok := w.(negroni.ResponseWriter); ok && rw.Status() != 0 {
		status = rw.Status()
	}
	s.log.WithRequest(id).Infow("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration", time.Since(start))
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}
