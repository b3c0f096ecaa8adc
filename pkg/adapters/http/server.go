package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aretw0/feedstream"
	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Feed is the slice of feedstream.Stream the server drives. Every call hops
// onto the stream's main loop.
type Feed interface {
	Leaves(ctx context.Context) ([]domain.ViewState, error)
	Click(ctx context.Context, index int) error
	Dismiss(ctx context.Context, key domain.ChildKey, undo domain.UndoAction, cb ports.PendingDismissCallback) error
	ShowZeroState(ctx context.Context, reason domain.ZeroStateReason) error
	Status(ctx context.Context) (feedstream.Status, error)
	Snapshot(ctx context.Context, anchor int) (*domain.Snapshot, error)
}

var _ Feed = (*feedstream.Stream)(nil)

// Server serves the inspection API.
type Server struct {
	Feed      Feed
	Events    *Broadcaster
	Snackbars *SnackbarBoard
	Metrics   http.Handler

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEvents sets the broadcaster served on /events.
func WithEvents(b *Broadcaster) Option {
	return func(s *Server) {
		s.Events = b
	}
}

// WithSnackbars sets the board served on /snackbars.
func WithSnackbars(b *SnackbarBoard) Option {
	return func(s *Server) {
		s.Snackbars = b
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates a new HTTP handler for the feed.
func NewHandler(feed Feed, opts ...Option) http.Handler {
	s := &Server{Feed: feed}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = s.logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/leaves", s.GetLeaves)
	r.Post("/leaves/{index}/click", s.ClickLeaf)
	r.Post("/contents/{key}/dismiss", s.DismissContent)
	r.Post("/zero-state", s.ShowZeroState)
	r.Post("/snapshots", s.CreateSnapshot)
	if s.Snackbars != nil {
		r.Get("/snackbars", s.ListSnackbars)
		r.Post("/snackbars/{id}/action", s.resolveSnackbar(true))
		r.Post("/snackbars/{id}/dismiss", s.resolveSnackbar(false))
	}
	if s.Events != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrLeafNotFound), errors.Is(err, ErrSnackbarNotFound):
		status = http.StatusNotFound
	case errors.Is(err, feedstream.ErrNotClickable):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "feedstream-http",
		"version": strings.TrimSpace(feedstream.Version),
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Feed.Status(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// GetLeaves handles the GET /leaves request.
func (s *Server) GetLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := s.Feed.Leaves(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, leaves)
}

// ClickLeaf handles the POST /leaves/{index}/click request.
func (s *Server) ClickLeaf(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "Invalid leaf index", http.StatusBadRequest)
		return
	}
	if err := s.Feed.Click(r.Context(), index); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DismissRequest is the optional body of a dismiss call.
type DismissRequest struct {
	ConfirmationLabel string `json:"confirmation_label"`
	ActionLabel       string `json:"action_label"`
}

// DismissContent handles the POST /contents/{key}/dismiss request. Keys
// containing slashes must be path-escaped.
func (s *Server) DismissContent(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		http.Error(w, "Invalid content key", http.StatusBadRequest)
		return
	}

	var body DismissRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("dismiss: invalid request body", "error", err)
			return
		}
	}
	if body.ConfirmationLabel == "" {
		body.ConfirmationLabel = "Removed"
	}

	undo := domain.UndoAction{ConfirmationLabel: body.ConfirmationLabel, ActionLabel: body.ActionLabel}
	cb := &dismissEvents{key: domain.ChildKey(key), events: s.Events}
	if err := s.Feed.Dismiss(r.Context(), domain.ChildKey(key), undo, cb); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ShowZeroState handles the POST /zero-state request.
func (s *Server) ShowZeroState(w http.ResponseWriter, r *http.Request) {
	if err := s.Feed.ShowZeroState(r.Context(), domain.ZeroStateError); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SnapshotRequest is the optional body of a snapshot call.
type SnapshotRequest struct {
	Anchor int `json:"anchor"`
}

// CreateSnapshot handles the POST /snapshots request.
func (s *Server) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var body SnapshotRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	snap, err := s.Feed.Snapshot(r.Context(), body.Anchor)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

// ListSnackbars handles the GET /snackbars request.
func (s *Server) ListSnackbars(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Snackbars.List())
}

func (s *Server) resolveSnackbar(withAction bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Snackbars.Resolve(chi.URLParam(r, "id"), withAction); err != nil {
			s.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Events.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// dismissEvents publishes the outcome of a pending dismiss.
type dismissEvents struct {
	key    domain.ChildKey
	events *Broadcaster
}

func (d *dismissEvents) OnDismissCommitted() {
	if d.events != nil {
		d.events.Publish(Event{Op: "dismiss_committed", Key: d.key})
	}
}

func (d *dismissEvents) OnDismissReverted() {
	if d.events != nil {
		d.events.Publish(Event{Op: "dismiss_reverted", Key: d.key})
	}
}
