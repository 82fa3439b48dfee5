// Package server exposes arranged galleries and process metrics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/skylight/internal/flickr"
	"github.com/five82/skylight/internal/gallery"
	"github.com/five82/skylight/internal/photo"
	"github.com/five82/skylight/internal/stream"
)

const (
	defaultWidth   = 960
	maxPages       = 10
	requestTimeout = 30 * time.Second
	shutdownGrace  = 5 * time.Second
)

// Options configures New.
type Options struct {
	Fetcher   stream.PageFetcher
	PageSize  int
	RowHeight float64
	Scale     float64
	Logger    *log.Logger
}

// Server serves the gallery API.
type Server struct {
	fetcher   stream.PageFetcher
	pageSize  int
	rowHeight float64
	scale     float64
	logger    *log.Logger
	router    chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = 180
	}
	s := &Server{
		fetcher:   opts.Fetcher,
		pageSize:  opts.PageSize,
		rowHeight: rowHeight,
		scale:     opts.Scale,
		logger:    logger.WithPrefix("server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/gallery", s.handleGallery)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	width, err := floatParam(q.Get("width"), defaultWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rowHeight, err := floatParam(q.Get("row_height"), s.rowHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pages, err := intParam(q.Get("pages"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if pages > maxPages {
		pages = maxPages
	}
	vw, err := floatParam(q.Get("viewport_width"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	vh, err := floatParam(q.Get("viewport_height"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := gallery.Collect(r.Context(), s.fetcher, gallery.Options{
		Query:     q.Get("q"),
		Pages:     pages,
		PageSize:  s.pageSize,
		RowWidth:  width,
		RowHeight: rowHeight,
		Viewport:  photo.Size{Width: vw, Height: vh},
		Scale:     s.scale,
	})
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			s.logger.Warn("gallery request failed", "query", q.Get("q"), "error", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrEmptyQuery), errors.Is(err, gallery.ErrUnknownWidth):
		return http.StatusBadRequest
	case flickr.IsRemote(err), flickr.IsTransport(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid page count %q", raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
