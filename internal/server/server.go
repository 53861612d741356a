// Package server exposes an explorer session as a small HTTP dashboard.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/explorer"
	"github.com/KaramelBytes/healthscope/internal/logger"
)

// Server serves one explorer session.
type Server struct {
	session *explorer.Session
	log     *slog.Logger
}

// New wraps a session that has already been Run.
func New(session *explorer.Session, log *slog.Logger) *Server {
	return &Server{session: session, log: logger.Component(log, "server")}
}

// PageResponse carries the emissions produced by one request.
type PageResponse struct {
	RequestID string                `json:"request_id" msgpack:"request_id"`
	Stage     string                `json:"stage" msgpack:"stage"`
	Filter    *explorer.FilterState `json:"filter,omitempty" msgpack:"filter,omitempty"`
	Emissions []display.Emission    `json:"emissions" msgpack:"emissions"`
}

type ThresholdRequest struct {
	Value *float64 `json:"value"`
}

type ErrorResponse struct {
	RequestID string `json:"request_id" msgpack:"request_id"`
	Error     string `json:"error" msgpack:"error"`
}

// Handler returns the dashboard router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Index)
	r.Get("/healthz", s.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/page", s.Page)
		r.Post("/threshold", s.Threshold)
	})
}

func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"stage":  s.session.Stage().String(),
	})
}

// Page replays the whole page for the current threshold.
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	var rec display.Recorder
	stage := s.session.Replay(&rec)
	s.write(w, r, http.StatusOK, s.pageResponse(r, stage, &rec))
}

// Threshold is the slider's change handler.
func (s *Server) Threshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	if req.Value == nil {
		s.fail(w, r, http.StatusBadRequest, errors.New("missing \"value\""))
		return
	}
	var rec display.Recorder
	stage, err := s.session.OnThresholdChange(*req.Value, &rec)
	switch {
	case errors.Is(err, explorer.ErrNotFilterable):
		s.fail(w, r, http.StatusConflict, err)
		return
	case errors.Is(err, explorer.ErrInvalidThreshold):
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	s.write(w, r, status, s.pageResponse(r, stage, &rec))
}

func (s *Server) pageResponse(r *http.Request, stage explorer.Stage, rec *display.Recorder) PageResponse {
	resp := PageResponse{RequestID: RequestID(r.Context()), Stage: stage.String(), Emissions: rec.Emissions}
	if st, ok := s.session.Filter(); ok {
		resp.Filter = &st
	}
	if resp.Emissions == nil {
		resp.Emissions = []display.Emission{}
	}
	return resp
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Warn("request rejected", slog.Int("status", status), logger.Err(err), slog.String("request_id", RequestID(r.Context())))
	s.write(w, r, status, ErrorResponse{RequestID: RequestID(r.Context()), Error: err.Error()})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", slog.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("dashboard shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
