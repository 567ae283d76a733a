package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/users"
)

// CredentialSource looks up accounts by username for password verification.
type CredentialSource interface {
	FindByUsername(ctx context.Context, username string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts CredentialSource
	repo     Repository
}

// NewService constructs a new Service.
func NewService(accounts CredentialSource, repo Repository) *Service {
	return &Service{accounts: accounts, repo: repo}
}

// Authenticate validates username/password credentials. Every failure mode
// collapses into the same error so responses never reveal which part was
// wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (users.User, error) {
	user, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
