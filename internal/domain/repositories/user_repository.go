package repositories

import (
	"context"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	// Create stores the profile keyed by the identity id
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves the users that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// ListByType retrieves all users with the given role
	ListByType(ctx context.Context, userType entities.UserType) ([]*entities.User, error)
}

// AccountRepository stores identity provider credentials
type AccountRepository interface {
	// Create stores a new account. A duplicate email yields a conflict error.
	Create(ctx context.Context, account *entities.Account) error

	// GetByEmail retrieves an account by its (case-insensitive) email
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
}
