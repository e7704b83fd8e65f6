package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cinewatch/models"
	"cinewatch/services/sessions"
	"cinewatch/services/users"
)

type sessionService interface {
	Create(userID string) models.Session
	Validate(token string) (string, error)
	Revoke(token string)
}

var _ sessionService = (*sessions.Service)(nil)

type authUsersService interface {
	Get(id string) (models.User, bool)
	VerifyPin(id, pin string) error
}

var _ authUsersService = (*users.Service)(nil)

// AuthHandler exchanges the server PIN plus an optional profile PIN for a
// bearer token.
type AuthHandler struct {
	Sessions  sessionService
	Users     authUsersService
	ServerPIN string
}

func NewAuthHandler(sessionSvc sessionService, userSvc authUsersService, serverPIN string) *AuthHandler {
	return &AuthHandler{Sessions: sessionSvc, Users: userSvc, ServerPIN: serverPIN}
}

type loginRequest struct {
	PIN    string `json:"pin"`
	UserID string `json:"userId"`
	// Profile PIN, only needed when the profile has one set.
	UserPIN string `json:"userPin"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(body.PIN)), []byte(h.ServerPIN)) != 1 {
		http.Error(w, "invalid PIN", http.StatusUnauthorized)
		return
	}

	userID := strings.TrimSpace(body.UserID)
	if userID == "" {
		userID = models.DefaultUserID
	}

	user, ok := h.Users.Get(userID)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	if err := h.Users.VerifyPin(userID, body.UserPIN); err != nil {
		if errors.Is(err, users.ErrPinInvalid) {
			http.Error(w, "invalid profile PIN", http.StatusUnauthorized)
			return
		}
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	session := h.Sessions.Create(userID)
	writeJSON(w, http.StatusOK, loginResponse{Token: session.Token, User: user})
}

// Logout handles POST /api/auth/logout. Requires a valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		h.Sessions.Revoke(token)
	}
	writeJSON(w, http.StatusOK, models.ActionResponse{Success: true, Message: "Logged out"})
}

// Me handles GET /api/auth/me, returning the session's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.ActionResponse{Success: false, Message: "User not authenticated"})
		return
	}

	user, ok := h.Users.Get(userID)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ActionResponse{Success: false, Message: "User not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
