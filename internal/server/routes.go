package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"sueca-ai/internal/database"
	"sueca-ai/internal/engine"
	"sueca-ai/internal/protocol"
)

// maxBodyBytes caps POST bodies; a full request is well under 4 KiB.
const maxBodyBytes = 64 << 10

// ResultStore is the read side of the result database.
type ResultStore interface {
	GetAll(ctx context.Context) ([]database.GameResult, error)
	GetByID(ctx context.Context, id string) (database.GameResult, error)
	GetByPlayer(ctx context.Context, name string) ([]database.GameResult, error)
}

// Server exposes the policy over HTTP and the table hub over WebSocket.
type Server struct {
	hub            *Hub
	results        ResultStore
	allowedOrigins []string
	log            logrus.FieldLogger
}

// NewServer creates a new API server. results may be nil, in which case the
// result routes answer 503.
func NewServer(hub *Hub, results ResultStore, allowedOrigins []string, log logrus.FieldLogger) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{
		hub:            hub,
		results:        results,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// The upgraded connection outlives the request, so /ws stays outside the timeout.
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Post("/play", s.handlePlay)
		r.Post("/legal", s.handleLegal)
		r.Options("/play", handleOptions)
		r.Options("/legal", handleOptions)

		r.Route("/api/results", func(r chi.Router) {
			r.Get("/", s.handleResults)
			r.Get("/player/{name}", s.handleResultsByPlayer)
			r.Get("/{id}", s.handleResult)
		})
	})

	return r
}

// requestLogger logs one line per request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration":    time.Since(start),
			"request_id":  middleware.GetReqID(r.Context()),
			"remote_addr": r.RemoteAddr,
		}).Info("Request completed")
	})
}

func handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePlay answers with the policy's card and reason tag.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlayRequest(w, r)
	if !ok {
		return
	}
	advice, err := engine.Advise(req.Situation())
	if errors.Is(err, engine.ErrNoLegalMoves) {
		s.writeJSON(w, http.StatusBadRequest, protocol.ErrorResponse{Detail: "No legal moves available"})
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, protocol.PlayResponse{Play: advice.Card, Reason: advice.Reason})
}

// handleLegal lists the legal cards for the same request body as /play.
func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlayRequest(w, r)
	if !ok {
		return
	}
	sit := req.Situation()
	if err := engine.Validate(sit); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, protocol.LegalResponse{
		Legal: engine.LegalMoves(sit.Hand, sit.Trick, sit.Trump),
	})
}

func (s *Server) decodePlayRequest(w http.ResponseWriter, r *http.Request) (protocol.PlayRequest, bool) {
	var req protocol.PlayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return req, false
	}
	return req, true
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("result store unavailable"))
		return
	}
	results, err := s.results.GetAll(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []database.GameResult{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("result store unavailable"))
		return
	}
	result, err := s.results.GetByID(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResultsByPlayer(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("result store unavailable"))
		return
	}
	results, err := s.results.GetByPlayer(r.Context(), chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError writes {"detail": ...}. Server-side failures are logged and
// their cause is not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("Request failed")
		detail = http.StatusText(status)
	}
	s.writeJSON(w, status, protocol.ErrorResponse{Detail: detail})
}
