package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/otcheredev/barmaster-pos/internal/middleware"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/otcheredev/barmaster-pos/internal/services"
	"github.com/rs/zerolog/log"
)

// SessionManager is the session lifecycle consumed by the HTTP layer
type SessionManager interface {
	Login(ctx context.Context, creds models.Credentials) (string, models.AppState, error)
	Current(ctx context.Context, token string) (models.AppState, error)
	Logout(ctx context.Context, token string) error
}

// SessionHandler serves login, logout and the floor of the current session
type SessionHandler struct {
	sessions SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginResponse struct {
	Token   string                `json:"token"`
	Session *models.Session       `json:"session"`
	Floor   *models.FloorSnapshot `json:"floor"`
}

type errorResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Login admits a staff member and opens a session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Reason: "bad_request", Message: "Invalid request body"})
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)

	token, state, err := h.sessions.Login(r.Context(), creds)
	if err != nil {
		var rejection *models.AdmissionError
		if errors.As(err, &rejection) {
			status := http.StatusForbidden
			if rejection.Reason == models.ReasonInvalidCredentials {
				status = http.StatusUnauthorized
			}
			writeJSON(w, status, errorResponse{Reason: string(rejection.Reason), Message: rejection.Message})
			return
		}

		log.Error().Err(err).Msg("Failed to open session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Reason: "internal", Message: "Failed to open session"})
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		Token:   token,
		Session: state.Session,
		Floor:   state.Floor,
	})
}

// Logout discards the current session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: "unauthorized", Message: "Session token not found"})
		return
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: "invalid_token", Message: "Invalid session token"})
			return
		}
		log.Error().Err(err).Msg("Failed to close session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Reason: "internal", Message: "Failed to close session"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentState resolves the session of the request, writing the error response itself
func (h *SessionHandler) currentState(w http.ResponseWriter, r *http.Request) (models.AppState, bool) {
	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: "unauthorized", Message: "Session token not found"})
		return models.AppState{}, false
	}

	state, err := h.sessions.Current(r.Context(), token)
	switch {
	case err == nil:
		return state, true
	case errors.Is(err, services.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: "invalid_token", Message: "Invalid session token"})
	case errors.Is(err, services.ErrSessionNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: "session_not_found", Message: "Session expired or logged out"})
	default:
		log.Error().Err(err).Msg("Failed to read session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Reason: "internal", Message: "Failed to read session"})
	}
	return models.AppState{}, false
}
