package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

// Messages shown by the login and registration forms
const (
	MsgFillAllFields        = "Please fill in all fields."
	MsgInvalidUserType      = "Please choose trainee, trainer or admin."
	MsgInvalidCredentials   = "Invalid email or password"
	MsgRegistrationFailedAs = "Registration failed: "
	MsgLoggedIn             = "Logged In"
)

// RegisterInput is the registration form
type RegisterInput struct {
	Username string
	Email    string
	Password string
	UserType entities.UserType
}

// AuthResult is a signed-in session with its bearer token and profile.
// User is nil when the identity has no profile document.
type AuthResult struct {
	Session *entities.Session
	Token   string
	User    *entities.User
}

// SessionState describes who is signed in on a client session
type SessionState struct {
	Identity *entities.Identity
	User     *entities.User
}

// SignedIn reports whether an identity is bound to the session
func (s *SessionState) SignedIn() bool {
	return s != nil && s.Identity != nil
}

// AuthService handles registration, login and session lookups
type AuthService struct {
	identity providers.IdentityProvider
	users    repositories.UserRepository
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(identity providers.IdentityProvider, users repositories.UserRepository) *AuthService {
	return &AuthService{
		identity: identity,
		users:    users,
		now:      time.Now,
	}
}

// Register creates the account, writes the profile keyed by the new identity
// id and leaves the account signed in on the session. If the profile cannot be
// written the session is signed out again.
func (s *AuthService) Register(ctx context.Context, sessionID string, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError(MsgFillAllFields)
	}
	if input.UserType == "" {
		input.UserType = entities.DefaultUserType
	}
	if !input.UserType.Valid() {
		return nil, apperrors.NewValidationError(MsgInvalidUserType)
	}

	session, token, err := s.identity.SignUp(ctx, sessionID, input.Email, input.Password)
	if err != nil {
		return nil, registrationError(ctx, err)
	}

	user := &entities.User{
		ID:        session.UID,
		Username:  input.Username,
		Email:     session.Email,
		UserType:  input.UserType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Error().Err(err).Str("uid", session.UID).Msg("Failed to write profile for new account")
		// The account stays; a later sign-in lands without a profile.
		if signOutErr := s.identity.SignOut(ctx, session.ID); signOutErr != nil {
			logger.Warn().Err(signOutErr).Str("uid", session.UID).Msg("Failed to sign out account without profile")
		}
		return nil, apperrors.NewInternalError(MsgRegistrationFailedAs+"could not save profile", err)
	}

	observability.LoggerFromContext(ctx).Info().
		Str("uid", user.ID).
		Str("user_type", string(user.UserType)).
		Msg("Registered new user")

	return &AuthResult{Session: session, Token: token, User: user}, nil
}

func registrationError(ctx context.Context, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeConflict:
			return apperrors.NewValidationError(MsgRegistrationFailedAs + appErr.Message)
		}
	}
	observability.LoggerFromContext(ctx).Error().Err(err).Msg("Identity provider sign-up failed")
	return apperrors.NewInternalError(MsgRegistrationFailedAs+"service unavailable", err)
}

// Login signs an existing account in on the session
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(MsgFillAllFields)
	}

	session, token, err := s.identity.SignIn(ctx, sessionID, email, password)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
			observability.LoggerFromContext(ctx).Error().Err(err).Msg("Identity provider sign-in failed")
		}
		return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
	}

	user, err := s.profile(ctx, session.UID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Session: session, Token: token, User: user}, nil
}

// Logout signs the session out
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.identity.SignOut(ctx, sessionID)
}

// Session resolves the identity and profile bound to the session
func (s *AuthService) Session(ctx context.Context, sessionID string) (*SessionState, error) {
	identity, err := s.identity.CurrentIdentity(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return &SessionState{}, nil
	}

	user, err := s.profile(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	return &SessionState{Identity: identity, User: user}, nil
}

// Resolve turns a verified session into a SessionState
func (s *AuthService) Resolve(ctx context.Context, session *entities.Session) (*SessionState, error) {
	identity := session.Identity()
	user, err := s.profile(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	return &SessionState{Identity: identity, User: user}, nil
}

// Verify validates a bearer token
func (s *AuthService) Verify(ctx context.Context, token string) (*entities.Session, error) {
	return s.identity.Verify(ctx, token)
}

// Watch streams the session's auth state until ctx is done
func (s *AuthService) Watch(ctx context.Context, sessionID string) (<-chan *entities.Identity, error) {
	return s.identity.OnAuthStateChanged(ctx, sessionID)
}

// profile loads the user document, returning nil when it does not exist
func (s *AuthService) profile(ctx context.Context, uid string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
