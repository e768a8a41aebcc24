package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	"github.com/zatekoja/trainingportal/pkg/config"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the provider's own minimum, not an application policy.
const MinPasswordLength = 6

// Reasons surfaced to users. They never include driver or hashing errors.
const (
	ReasonInvalidEmail       = "invalid email"
	ReasonWeakPassword       = "password should be at least 6 characters"
	ReasonEmailInUse         = "email already in use"
	ReasonInvalidCredentials = "invalid credentials"
	ReasonInvalidToken       = "invalid token"
	ReasonExpiredToken       = "token expired"
	ReasonSessionRevoked     = "session revoked"
)

var (
	_ providers.IdentityProvider = (*Provider)(nil)

	errMissingSession = errors.New("session id is required")
)

// Claims are the custom JWT claims carried by a session token. Subject holds
// the identity id.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Provider is a bcrypt/JWT identity provider. Sessions live in a cache so a
// sign-out revokes outstanding tokens, and auth state changes are announced
// on the event bus per session.
type Provider struct {
	accounts repositories.AccountRepository
	sessions providers.CacheProvider
	bus      providers.EventBus
	secret   []byte
	ttl      time.Duration
	cost     int
	metrics  *observability.Metrics
	now      func() time.Time
}

// Option configures a Provider
type Option func(*Provider)

// WithHashCost overrides the bcrypt cost
func WithHashCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// WithMetrics records rejected sign-ins
func WithMetrics(metrics *observability.Metrics) Option {
	return func(p *Provider) { p.metrics = metrics }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider creates an identity provider
func NewProvider(accounts repositories.AccountRepository, sessions providers.CacheProvider, bus providers.EventBus, cfg config.AuthConfig, opts ...Option) *Provider {
	p := &Provider{
		accounts: accounts,
		sessions: sessions,
		bus:      bus,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	if p.ttl <= 0 {
		p.ttl = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignUp creates an account and signs it in on the session
func (p *Provider) SignUp(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error) {
	if sessionID == "" {
		return nil, "", apperrors.NewInternalError("failed to sign up", errMissingSession)
	}

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apperrors.NewValidationError(ReasonInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperrors.NewValidationError(ReasonWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to hash password", err)
	}

	account := &entities.Account{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return nil, "", apperrors.NewConflictError(ReasonEmailInUse)
		}
		return nil, "", err
	}

	return p.startSession(ctx, sessionID, account)
}

// SignIn verifies credentials and signs the identity in on the session
func (p *Provider) SignIn(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error) {
	if sessionID == "" {
		return nil, "", apperrors.NewInternalError("failed to sign in", errMissingSession)
	}

	account, err := p.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			observability.RecordAuthFailure(ctx, p.metrics, "sign_in")
			return nil, "", apperrors.NewUnauthorizedError(ReasonInvalidCredentials)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		observability.RecordAuthFailure(ctx, p.metrics, "sign_in")
		return nil, "", apperrors.NewUnauthorizedError(ReasonInvalidCredentials)
	}

	return p.startSession(ctx, sessionID, account)
}

// SignOut revokes the session and announces the change
func (p *Provider) SignOut(ctx context.Context, sessionID string) error {
	session, err := p.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := p.sessions.Delete(ctx, sessionKey(sessionID)); err != nil {
		return apperrors.NewExternalError("failed to revoke session", err)
	}

	p.announce(ctx, sessionID, entities.EventTypeSignedOut, nil)
	return nil
}

// Verify validates a bearer token against the live session store
func (p *Provider) Verify(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError(ReasonInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorizedError(ReasonExpiredToken)
		}
		return nil, apperrors.NewUnauthorizedError(ReasonInvalidToken)
	}
	if !parsed.Valid || claims.SessionID == "" || claims.Subject == "" {
		return nil, apperrors.NewUnauthorizedError(ReasonInvalidToken)
	}

	session, err := p.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UID != claims.Subject {
		return nil, apperrors.NewUnauthorizedError(ReasonSessionRevoked)
	}

	return session, nil
}

// CurrentIdentity returns the identity signed in on the session, or nil
func (p *Provider) CurrentIdentity(ctx context.Context, sessionID string) (*entities.Identity, error) {
	session, err := p.loadSession(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}
	return session.Identity(), nil
}

// OnAuthStateChanged emits the session's identity now and on every change
func (p *Provider) OnAuthStateChanged(ctx context.Context, sessionID string) (<-chan *entities.Identity, error) {
	events, err := p.bus.Subscribe(ctx, providers.GetAuthChannel(sessionID))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to subscribe to auth state", err)
	}

	current, err := p.CurrentIdentity(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make(chan *entities.Identity, 1)
	out <- current

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				var identity *entities.Identity
				if event.Type == entities.EventTypeSignedIn {
					identity = &entities.Identity{}
					if err := json.Unmarshal(event.Payload, identity); err != nil {
						observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Discarding malformed auth event")
						continue
					}
				} else if event.Type != entities.EventTypeSignedOut {
					continue
				}
				select {
				case out <- identity:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (p *Provider) startSession(ctx context.Context, sessionID string, account *entities.Account) (*entities.Session, string, error) {
	now := p.now().UTC()
	session := &entities.Session{
		ID:        sessionID,
		UID:       account.ID,
		Email:     account.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(p.ttl),
	}

	claims := Claims{
		SessionID: sessionID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			ID:        uuid.New().String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to sign session token", err)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to encode session", err)
	}
	if err := p.sessions.Set(ctx, sessionKey(sessionID), data, int(p.ttl.Seconds())); err != nil {
		return nil, "", apperrors.NewExternalError("failed to store session", err)
	}

	p.announce(ctx, sessionID, entities.EventTypeSignedIn, session.Identity())
	return session, token, nil
}

func (p *Provider) loadSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	data, err := p.sessions.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			return nil, nil
		}
		return nil, apperrors.NewExternalError("failed to load session", err)
	}

	session := &entities.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, apperrors.NewInternalError("failed to decode session", err)
	}
	if !session.ExpiresAt.IsZero() && p.now().After(session.ExpiresAt) {
		return nil, nil
	}
	return session, nil
}

func (p *Provider) announce(ctx context.Context, sessionID string, eventType entities.EventType, identity *entities.Identity) {
	var payload interface{}
	if identity != nil {
		payload = identity
	}
	event := entities.NewEvent(eventType, sessionID, payload)
	if err := p.bus.Publish(ctx, providers.GetAuthChannel(sessionID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish auth state change")
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
