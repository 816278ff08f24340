package repo

import (
	"context"
	"time"

	"github.com/examify/auth-service/internal/domain"
)

// Store is the persistence contract for the single users collection. Lookup
// methods return (nil, nil) when no record matches; correctness of concurrent
// writes relies on the atomicity of single operations (ConsumeResetToken in
// particular must be find-and-update in one step).
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByEmailAndRole(ctx context.Context, email, role string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	CountAdmins(ctx context.Context) (int64, error)
	UpdateRole(ctx context.Context, id, role string) error
	SetVerified(ctx context.Context, id string, verified bool) error

	// SetResetState overwrites the pending-reset fields on one account.
	SetResetState(ctx context.Context, id, token string, expires time.Time, attempts int, last time.Time) error
	// ConsumeResetToken atomically matches an unexpired token, replaces the
	// password hash and clears the token+expiry. Returns (nil, nil) when no
	// account holds that token with a live expiry.
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*domain.User, error)
}
