package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/automator"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/session"
	"github.com/aretw0/automator/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server exposes builder sessions over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	renderer *view.Renderer
	format   view.Format
	metrics  http.Handler
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStreams shares a StreamManager that is also registered as the
// sessions' event publisher. Without it, /events streams never receive
// anything.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithRenderer sets the renderer used for text and markdown views.
func WithRenderer(r *view.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithDefaultFormat sets the view format used when a request names none.
func WithDefaultFormat(f view.Format) Option {
	return func(s *Server) {
		s.format = f
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the given sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		renderer: view.NewRenderer(),
		format:   view.FormatJSON,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/catalog", s.GetCatalog)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Post("/actions", s.AddAction)
			r.Delete("/actions/{actionID}", s.RemoveAction)
			r.Put("/name", s.RenameWorkflow)
			r.Put("/selection", s.SelectWorkflow)
			r.Post("/library/toggle", s.ToggleLibrary)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()))
	})
}

// MutationResponse is returned by every editing endpoint.
type MutationResponse struct {
	// Action is the added action, for POST /actions.
	Action *domain.Action `json:"action,omitempty"`
	// Changed is false when the operation degraded to a no-op.
	Changed bool                 `json:"changed"`
	Diff    *domain.SnapshotDiff `json:"diff,omitempty"`
	View    view.View            `json:"view"`
}

// AddActionRequest is the body of POST /sessions/{sessionID}/actions.
type AddActionRequest struct {
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("failed to load OpenAPI spec", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "automator-http",
		"version":     automator.Version,
		"api_version": apiVersion,
	})
}

// GetSpec serves the embedded OpenAPI document.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(rawSpec)
}

// GetCatalog handles the GET /catalog request.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.Catalog())
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sessions.List())
}

// GetSession renders the session's view. Unknown sessions are created.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	format := s.format
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := view.ParseFormat(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	var snap domain.Snapshot
	err := s.Sessions.WithSession(r.Context(), sessionID(r), func(_ context.Context, store *builder.Store) error {
		snap = store.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, view.Project(snap), format); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

// CloseSession discards a session.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.Sessions.Close(sessionID(r)) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("session not found: %s", sessionID(r)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAction handles POST /sessions/{sessionID}/actions.
//
// The name defaults to the catalog name for the type. A free-form type is
// accepted only when a name is given.
func (s *Server) AddAction(w http.ResponseWriter, r *http.Request) {
	var body AddActionRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Type == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("type is required"))
		return
	}
	if body.Name == "" {
		entry, ok := domain.LookupCatalog(body.Type)
		if !ok {
			s.fail(w, fmt.Errorf("%w: %s", domain.ErrUnknownActionType, body.Type))
			return
		}
		body.Name = entry.Name
	}

	var added domain.Action
	resp, err := s.mutate(r, func(ctx context.Context, store *builder.Store) error {
		target := body.WorkflowID
		if target == "" {
			target = store.SelectedID()
		}
		var err error
		added, err = store.AddAction(ctx, target, body.Type, body.Name)
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	status := http.StatusOK
	if added.ID != "" {
		resp.Action = &added
		status = http.StatusCreated
	}
	s.writeJSON(w, status, resp)
}

// RemoveAction handles DELETE /sessions/{sessionID}/actions/{actionID}.
func (s *Server) RemoveAction(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "actionID")
	resp, err := s.mutate(r, func(ctx context.Context, store *builder.Store) error {
		return store.RemoveAction(ctx, actionID)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// RenameWorkflow handles PUT /sessions/{sessionID}/name.
func (s *Server) RenameWorkflow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Name == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	resp, err := s.mutate(r, func(ctx context.Context, store *builder.Store) error {
		return store.RenameWorkflow(ctx, *body.Name)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SelectWorkflow handles PUT /sessions/{sessionID}/selection.
func (s *Server) SelectWorkflow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkflowID *string `json:"workflow_id"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.WorkflowID == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("workflow_id is required"))
		return
	}

	resp, err := s.mutate(r, func(ctx context.Context, store *builder.Store) error {
		return store.SelectWorkflow(ctx, *body.WorkflowID)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ToggleLibrary handles POST /sessions/{sessionID}/library/toggle.
func (s *Server) ToggleLibrary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mutate(r, func(ctx context.Context, store *builder.Store) error {
		store.ToggleLibrary(ctx)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles GET /sessions/{sessionID}/events (SSE).
// The optional types query parameter filters by event type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	var watch map[string]bool
	if q := r.URL.Query().Get("types"); q != "" {
		watch = make(map[string]bool)
		for _, t := range strings.Split(q, ",") {
			watch[strings.TrimSpace(t)] = true
		}
	}

	id := sessionID(r)
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE client subscribed", zap.String("session_id", id))

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", zap.String("session_id", id))
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil && !watch[msg.Event] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

// mutate runs fn within the session turn and reports what it changed.
func (s *Server) mutate(r *http.Request, fn func(context.Context, *builder.Store) error) (MutationResponse, error) {
	var resp MutationResponse
	err := s.Sessions.WithSession(r.Context(), sessionID(r), func(ctx context.Context, store *builder.Store) error {
		before := store.Snapshot()
		if err := fn(ctx, store); err != nil {
			return err
		}
		after := store.Snapshot()
		resp.Diff = domain.Diff(&before, &after)
		resp.View = view.Project(after)
		return nil
	})
	resp.Changed = resp.Diff != nil
	return resp, err
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound), errors.Is(err, domain.ErrActionNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrUnknownActionType):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled):
		s.writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", zap.Error(err))
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
