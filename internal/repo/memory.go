package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examify/auth-service/internal/domain"
	apperrors "github.com/examify/auth-service/internal/errors"
)

// MemoryStore keeps users in a map behind a mutex. It backs tests and local
// runs without a Mongo instance.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*domain.User)}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func clone(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if strings.EqualFold(e.Email, u.Email) {
			return apperrors.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID.Hex()] = clone(u)
	return nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindUserByEmailAndRole(ctx context.Context, email, role string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.Role == role {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *MemoryStore) CountAdmins(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.Role == domain.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpdateRole(ctx context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetVerified(ctx context.Context, id string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Verified = verified
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetResetState(ctx context.Context, id, token string, expires time.Time, attempts int, last time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	exp, la := expires.UTC(), last.UTC()
	u.ResetToken = token
	u.ResetExpires = &exp
	u.ResetAttempts = attempts
	u.LastResetAttempt = &la
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetToken == token && u.ResetExpires != nil && u.ResetExpires.After(now) {
			u.PasswordHash = newHash
			u.ResetToken = ""
			u.ResetExpires = nil
			u.UpdatedAt = now.UTC()
			return clone(u), nil
		}
	}
	return nil, nil
}
