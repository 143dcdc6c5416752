// Package server exposes the outreach service over HTTP. The control
// surface is push-based: an upstream scheduler posts one action at a
// time and reads the outcome from the response body.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/service"
)

// Service is what the handlers need from the orchestration layer.
type Service interface {
	SendConnection(req service.ConnectionRequest) (outreach.Outcome, error)
	SendMessage(profileURL, prospectID, message string) error
	Visit(profileURL string) error
	React(postURL string) error
	Comment(postURL, text string) error
	Login() error
	LoggedIn() bool
	Stats() (map[string]int, error)
	Close()
}

type Server struct {
	svc Service
}

func New(svc Service) *Server {
	return &Server{svc: svc}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/send-connection", s.handleSendConnection)
	r.Post("/send-message", s.handleSendMessage)
	r.Post("/visit", s.handleVisit)
	r.Post("/react", s.handleReact)
	r.Post("/comment", s.handleComment)
	r.Post("/close", s.handleClose)

	return r
}

type connectionPayload struct {
	LinkedInURL    string `json:"linkedin_url"`
	ConnectionNote string `json:"connection_note"`
	ProspectID     string `json:"prospect_id"`
	ActionID       string `json:"action_id"`
}

type connectionResponse struct {
	outreach.Outcome
	ProspectID string `json:"prospect_id"`
	ActionID   string `json:"action_id"`
	Timestamp  string `json:"timestamp"`
}

func (s *Server) handleSendConnection(w http.ResponseWriter, r *http.Request) {
	var payload connectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.LinkedInURL == "" {
		writeError(w, http.StatusBadRequest, "linkedin_url is required")
		return
	}
	if payload.ProspectID == "" {
		writeError(w, http.StatusBadRequest, "prospect_id is required")
		return
	}
	if payload.ActionID == "" {
		payload.ActionID = uuid.NewString()
	}

	out, err := s.svc.SendConnection(service.ConnectionRequest{
		ActionID:   payload.ActionID,
		ProspectID: payload.ProspectID,
		ProfileURL: payload.LinkedInURL,
		Note:       payload.ConnectionNote,
	})
	if err != nil {
		if errors.Is(err, service.ErrDailyLimitReached) || errors.Is(err, service.ErrHourlyLimitReached) {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if !out.Success {
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, connectionResponse{
		Outcome:    out,
		ProspectID: payload.ProspectID,
		ActionID:   payload.ActionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

type messagePayload struct {
	LinkedInURL string `json:"linkedin_url"`
	Message     string `json:"message"`
	ProspectID  string `json:"prospect_id"`
	ActionID    string `json:"action_id"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.LinkedInURL == "" {
		writeError(w, http.StatusBadRequest, "linkedin_url is required")
		return
	}
	if payload.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if payload.ActionID == "" {
		payload.ActionID = uuid.NewString()
	}

	if err := s.svc.SendMessage(payload.LinkedInURL, payload.ProspectID, payload.Message); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"profile_url": payload.LinkedInURL,
		"prospect_id": payload.ProspectID,
		"action_id":   payload.ActionID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "linkedin_url", func(url, _ string) error {
		return s.svc.Visit(url)
	}, false)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "post_url", func(url, _ string) error {
		return s.svc.React(url)
	}, false)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "post_url", func(url, text string) error {
		return s.svc.Comment(url, text)
	}, true)
}

// handleSimpleAction covers the single-URL engagement endpoints. When
// needsText is set, a non-empty "text" field is required too.
func (s *Server) handleSimpleAction(w http.ResponseWriter, r *http.Request, urlField string, fn func(url, text string) error, needsText bool) {
	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	url := payload[urlField]
	if url == "" {
		writeError(w, http.StatusBadRequest, urlField+" is required")
		return
	}
	text := payload["text"]
	if needsText && text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := fn(url, text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"logged_in": s.svc.LoggedIn(),
	}

	if stats, err := s.svc.Stats(); err == nil {
		resp["stats"] = stats
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Login(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "logged_in": true})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.svc.Close()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// requestLogger logs each request through the global structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
