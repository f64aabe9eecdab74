// Package server exposes the poll service as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/service"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// Polls is the part of *service.Service the server needs.
type Polls interface {
	CreatePoll(ctx context.Context, question string, options []string) (common.PollID, error)
	Vote(ctx context.Context, id string, choice int) error
	GetAllPolls(ctx context.Context) ([]common.Poll, error)
	GetPoll(ctx context.Context, id string) (common.Poll, error)
	Identity(ctx context.Context) (string, error)
	IdentityIsPlaceholder() bool
	Mode() service.Mode
}

var _ Polls = (*service.Service)(nil)

type Options struct {
	Logger *zap.Logger
	// Registry is served on /metrics when set.
	Registry *prometheus.Registry
	// WriteRPS and WriteBurst bound poll creation and votes per client.
	// Zero disables the limit.
	WriteRPS   float64
	WriteBurst int
}

type Server struct {
	polls    Polls
	l        *zap.Logger
	registry *prometheus.Registry
	limiter  *writeLimiter
}

func New(polls Polls, opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		polls:    polls,
		l:        l,
		registry: opts.Registry,
		limiter:  newWriteLimiter(opts.WriteRPS, opts.WriteBurst),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/identity", s.identity)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/polls", func(r chi.Router) {
		r.Get("/", s.listPolls)
		r.Get("/{id}", s.getPoll)
		r.Group(func(r chi.Router) {
			r.Use(s.limitWrites)
			r.Post("/", s.createPoll)
			r.Post("/{id}/vote", s.vote)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.l.Info("listening", zap.String("addr", addr), zap.Stringer("backend", s.polls.Mode()))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.l.Debug("request",
			zap.String("id", ww.Header().Get(RequestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(started)),
		)
	})
}

func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r), time.Now()) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.polls.Mode().String(),
	})
}

func (s *Server) identity(w http.ResponseWriter, r *http.Request) {
	addr, err := s.polls.Identity(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address":     addr,
		"placeholder": s.polls.IdentityIsPlaceholder(),
	})
}

func (s *Server) listPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := s.polls.GetAllPolls(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if polls == nil {
		polls = []common.Poll{}
	}
	writeJSON(w, http.StatusOK, polls)
}

func (s *Server) getPoll(w http.ResponseWriter, r *http.Request) {
	p, err := s.polls.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type createPollResponse struct {
	ID    common.PollID `json:"id"`
	Known bool          `json:"known"`
}

func (s *Server) createPoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.polls.CreatePoll(r.Context(), req.Question, req.Options)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createPollResponse{ID: id, Known: id.Known()})
}

type voteRequest struct {
	Choice *int `json:"choice"`
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Choice == nil {
		writeError(w, http.StatusBadRequest, "choice is required")
		return
	}
	if err := s.polls.Vote(r.Context(), chi.URLParam(r, "id"), *req.Choice); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vote recorded"})
}
