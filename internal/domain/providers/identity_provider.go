package providers

import (
	"context"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// IdentityProvider creates accounts, verifies credentials and tracks which
// identity is signed in on each client session.
type IdentityProvider interface {
	// SignUp creates an account and signs it in on the session. Failures are
	// validation or conflict errors with a short reason.
	SignUp(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error)

	// SignIn verifies credentials and signs the identity in on the session,
	// returning the session and its bearer token.
	SignIn(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error)

	// SignOut revokes the session. Signing out a signed-out session is a no-op.
	SignOut(ctx context.Context, sessionID string) error

	// Verify validates a bearer token against the live session store.
	Verify(ctx context.Context, token string) (*entities.Session, error)

	// CurrentIdentity returns the identity signed in on the session, or nil.
	CurrentIdentity(ctx context.Context, sessionID string) (*entities.Identity, error)

	// OnAuthStateChanged emits the current identity immediately (nil when
	// signed out) and again on every sign-in or sign-out of the session. The
	// channel closes when ctx is done.
	OnAuthStateChanged(ctx context.Context, sessionID string) (<-chan *entities.Identity, error)
}
