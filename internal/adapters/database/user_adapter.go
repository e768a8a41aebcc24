package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

const pqUniqueViolation = "23505"

var userColumns = []interface{}{"id", "username", "email", "user_type", "created_at"}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a user profile
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	defer a.client.Observe(ctx, "users.create", time.Now())

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"user_type":  string(user.UserType),
		"created_at": user.CreatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("user already exists")
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	defer a.client.Observe(ctx, "users.get", time.Now())

	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user := &entities.User{}
	if err := a.client.DBX().GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}

// GetByIDs retrieves the users that exist among ids
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}
	defer a.client.Observe(ctx, "users.get_many", time.Now())

	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	users := []*entities.User{}
	if err := a.client.DBX().SelectContext(ctx, &users, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get users", err)
	}

	return users, nil
}

// ListByType retrieves all users with the given role ordered by username
func (a *UserAdapter) ListByType(ctx context.Context, userType entities.UserType) ([]*entities.User, error) {
	defer a.client.Observe(ctx, "users.list_by_type", time.Now())

	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(goqu.Ex{"user_type": string(userType)}).
		Order(goqu.I("username").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	users := []*entities.User{}
	if err := a.client.DBX().SelectContext(ctx, &users, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	return users, nil
}

// AccountAdapter implements the AccountRepository interface
type AccountAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAccountAdapter creates a new account adapter
func NewAccountAdapter(client *postgres.Client) repositories.AccountRepository {
	return &AccountAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an account. The email is stored lower-cased.
func (a *AccountAdapter) Create(ctx context.Context, account *entities.Account) error {
	defer a.client.Observe(ctx, "accounts.create", time.Now())

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	account.Email = strings.ToLower(account.Email)

	record := goqu.Record{
		"id":            account.ID,
		"email":         account.Email,
		"password_hash": account.PasswordHash,
		"created_at":    account.CreatedAt,
	}

	query, args, err := a.db.Insert("accounts").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build account insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("email already in use")
		}
		return apperrors.NewInternalError("failed to create account", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (a *AccountAdapter) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	defer a.client.Observe(ctx, "accounts.get_by_email", time.Now())

	query, args, err := a.db.Select("id", "email", "password_hash", "created_at").
		From("accounts").
		Where(goqu.Func("LOWER", goqu.I("email")).Eq(strings.ToLower(email))).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	account := &entities.Account{}
	if err := a.client.DBX().GetContext(ctx, account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account not found")
		}
		return nil, apperrors.NewInternalError("failed to get account", err)
	}

	return account, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
