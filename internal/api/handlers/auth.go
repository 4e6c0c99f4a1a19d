package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

// AuthHandler handles HTTP requests for account and session endpoints.
type AuthHandler struct {
	sessionService *service.SessionService
}

// NewAuthHandler creates a new AuthHandler with the provided service dependency.
func NewAuthHandler(sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
	}
}

// SessionResponse is the payload returned after a successful login.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Register handles POST requests to create an account.
//
// Endpoint: POST /api/auth/register
// Request Body: RegisterRequest (username, password)
// Response: 201 Created with the username
// Error: 400 Bad Request if the body is invalid or credentials are empty
// Error: 500 Internal Server Error if creation fails
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.sessionService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusBadRequest, "username and password are required", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to register", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
}

// Login handles POST requests to open a session.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (username, password)
// Response: 200 OK with SessionResponse
// Error: 401 Unauthorized on bad credentials
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sess, err := h.sessionService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to log in", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, SessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST requests to revoke the current session.
//
// Endpoint: POST /api/auth/logout
// Response: 204 No Content
// Error: 404 Not Found if the token has no session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

	if err := h.sessionService.Logout(r.Context(), token); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSessionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to log out", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
