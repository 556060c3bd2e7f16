package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller attached to a request. The core
// trusts it verbatim; token validation happens at the transport layer.
type Identity struct {
	ID       uuid.UUID
	Username string
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
