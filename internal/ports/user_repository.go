package ports

import (
	"context"
	"errors"

	"reviewd/internal/domain/user"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already registered")
)

type UserRepository interface {
	// FindByUsername and FindByEmail return ErrUserNotFound when no row
	// matches.
	FindByUsername(ctx context.Context, username string) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	FindByID(ctx context.Context, id string) (user.User, error)
	// Create assigns an ID and returns the stored user. A username or email
	// collision surfaces as ErrDuplicateUser.
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TokenStore records revoked JWTs. Rows whose expiry has passed may be purged
// on demand; there is no automatic purge job.
type TokenStore interface {
	// Add records the revocation. CreatedAt is stamped by the store when
	// left zero.
	Add(ctx context.Context, t user.BlacklistedToken) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
