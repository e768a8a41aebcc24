package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	"github.com/zatekoja/trainingportal/pkg/config"
)

const (
	MsgLoginRequired = "Please log in to continue."
	MsgNoAccess      = "You do not have access to this page."
	LoginPath        = "/login"
)

type principalKey struct{}

// Principal is the caller as resolved from the session cookie or token
type Principal struct {
	SessionID string
	State     *services.SessionState
}

// SessionResolver looks up who is signed in
type SessionResolver interface {
	Session(ctx context.Context, sessionID string) (*services.SessionState, error)
	Verify(ctx context.Context, token string) (*entities.Session, error)
	Resolve(ctx context.Context, session *entities.Session) (*services.SessionState, error)
}

// SessionMiddleware gives every client a session id cookie and resolves the
// signed-in identity. A bearer token (header or cookie) takes precedence over
// the session cookie. Lookup failures leave the caller signed out.
func SessionMiddleware(resolver SessionResolver, cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := observability.LoggerFromContext(ctx)

			sessionID := ""
			if cookie, err := r.Cookie(cfg.SessionCookieName); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			} else {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			var state *services.SessionState
			if token := bearerToken(r, cfg.TokenCookieName); token != "" {
				if session, err := resolver.Verify(ctx, token); err == nil {
					sessionID = session.ID
					state, err = resolver.Resolve(ctx, session)
					if err != nil {
						logger.Warn().Err(err).Msg("Failed to resolve token session")
					}
				} else {
					logger.Debug().Err(err).Msg("Ignoring invalid session token")
				}
			}

			if state == nil {
				var err error
				state, err = resolver.Session(ctx, sessionID)
				if err != nil {
					logger.Warn().Err(err).Msg("Failed to resolve session")
					state = &services.SessionState{}
				}
			}

			if state.SignedIn() {
				ctx = observability.WithLogger(ctx, logger.With().Str("uid", state.Identity.UID).Logger())
			}

			ctx = context.WithValue(ctx, principalKey{}, &Principal{SessionID: sessionID, State: state})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// PrincipalFromContext returns the resolved caller. Requests that did not
// pass through SessionMiddleware get an anonymous principal.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return &Principal{State: &services.SessionState{}}
}

// WithPrincipal attaches a principal to ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// CurrentUser returns the signed-in user's profile, or nil
func CurrentUser(ctx context.Context) *entities.User {
	p := PrincipalFromContext(ctx)
	if !p.State.SignedIn() {
		return nil
	}
	return p.State.User
}

// RequireAuth rejects anonymous callers with a redirect to the login page
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFromContext(r.Context()).State.SignedIn() {
			writeRedirectError(w, http.StatusUnauthorized, MsgLoginRequired, LoginPath)
			return
		}
		next(w, r)
	}
}

// RequireRole admits signed-in callers whose profile has one of roles.
// Others are sent to their own dashboard.
func RequireRole(next http.HandlerFunc, roles ...entities.UserType) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			writeRedirectError(w, http.StatusForbidden, MsgNoAccess, "/")
			return
		}
		for _, role := range roles {
			if user.UserType == role {
				next(w, r)
				return
			}
		}
		writeRedirectError(w, http.StatusForbidden, MsgNoAccess, services.DashboardPath(user.UserType))
	})
}

func writeRedirectError(w http.ResponseWriter, status int, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":    message,
		"redirect": redirect,
	})
}
