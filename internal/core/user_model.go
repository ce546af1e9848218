package core

import (
	"context"
	"time"
)

// Roles carried by users. Admin is a single capability flag, not a policy
// hierarchy: admins may approve and may act on records they do not own.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an authenticated system user within a division.
type User struct {
	ID           int
	Username     string
	FullName     string
	Division     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the admin flag.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserService provides user lookup operations.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)
}
