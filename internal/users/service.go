package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches one user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateUser hashes the password and stores the account. The role string must
// come from the closed vocabulary; anything else is rejected here rather than
// stored as a latent zero-privilege account.
func (s *Service) CreateUser(ctx context.Context, username, name, password, role string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("%w: username required", shared.ErrValidation)
	}
	if authz.ParseRole(role) == authz.RoleUnknown {
		return User{}, fmt.Errorf("%w: unrecognized role %q", shared.ErrValidation, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		Username:     username,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	})
}

// UpdateUser applies name, role and active changes to an existing account.
func (s *Service) UpdateUser(ctx context.Context, id int64, name, role string, isActive bool) (User, error) {
	if authz.ParseRole(role) == authz.RoleUnknown {
		return User{}, fmt.Errorf("%w: unrecognized role %q", shared.ErrValidation, role)
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Name = strings.TrimSpace(name)
	user.Role = role
	user.IsActive = isActive
	return s.repo.Update(ctx, user)
}

// DeleteUser removes the account and its property assignments. The caller
// receives the removed user so the audit entry can snapshot its username.
func (s *Service) DeleteUser(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return User{}, err
	}
	return user, nil
}
