package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/pkg/config"
)

const (
	MsgLoggedOut   = "Logged Out"
	MsgInvalidJSON = "invalid request body"
)

// AuthService is the account flow used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, sessionID string, input services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, sessionID, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	service AuthService
	cfg     config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cfg:     cfg,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	SignedIn bool               `json:"signedIn"`
	Identity *entities.Identity `json:"identity"`
	User     *entities.User     `json:"user"`
	Welcome  string             `json:"welcome,omitempty"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	result, err := h.service.Register(r.Context(), principal.SessionID, services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		UserType: entities.UserType(req.UserType),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setTokenCookie(w, result)

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  registeredMessage(result.User),
		"user":     result.User,
		"redirect": services.DashboardPath(result.User.UserType),
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	result, err := h.service.Login(r.Context(), principal.SessionID, req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setTokenCookie(w, result)

	redirect := "/"
	if result.User != nil {
		redirect = services.DashboardPath(result.User.UserType)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   services.MsgLoggedIn,
		"user":     result.User,
		"redirect": redirect,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Logout(r.Context(), principal.SessionID); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":   MsgLoggedOut,
		"redirect": middleware.LoginPath,
	})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	state := middleware.PrincipalFromContext(r.Context()).State
	respondWithJSON(w, http.StatusOK, SessionResponse{
		SignedIn: state.SignedIn(),
		Identity: state.Identity,
		User:     state.User,
		Welcome:  services.Welcome(state.User),
	})
}

// Navigation handles GET /api/nav
func (h *AuthHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	state := middleware.PrincipalFromContext(r.Context()).State
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"links": services.Navigation(state),
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, result *services.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.TokenCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		MaxAge:   int(time.Until(result.Session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func registeredMessage(user *entities.User) string {
	article := "a"
	if user.UserType == entities.UserTypeAdmin {
		article = "an"
	}
	return services.Welcome(user) + " You registered as " + article + " " + string(user.UserType) + "."
}
