package entities

import (
	"time"
)

// UserType is the role chosen at registration. It never changes afterwards.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeTrainer UserType = "trainer"
	UserTypeTrainee UserType = "trainee"
)

// DefaultUserType is applied when a registration omits the role.
const DefaultUserType = UserTypeTrainee

// Valid reports whether t is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeTrainer, UserTypeTrainee:
		return true
	}
	return false
}

// User is the profile document keyed by the identity id.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	UserType  UserType  `json:"userType" db:"user_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DisplayName returns the username, falling back to the id when it is empty.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// Account holds the credentials owned by the identity provider.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Identity is the signed-in principal as reported by the identity provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session binds a client session id to an identity.
type Session struct {
	ID        string    `json:"sid"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity returns the principal carried by the session.
func (s *Session) Identity() *Identity {
	return &Identity{UID: s.UID, Email: s.Email}
}
