package assignments

import (
	"context"
	"fmt"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// RepositoryPort defines data access for the assignment relation.
type RepositoryPort interface {
	ListForUser(ctx context.Context, userID int64) ([]Assignment, error)
	Create(ctx context.Context, userID, propertyID int64) (bool, error)
	Delete(ctx context.Context, userID, propertyID int64) error
}

// UserChecker verifies the target account exists before assigning.
type UserChecker interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// PropertyChecker verifies the target property exists before assigning.
type PropertyChecker interface {
	Exists(ctx context.Context, propertyID int64) (bool, error)
}

// Service handles assignment business logic.
type Service struct {
	repo       RepositoryPort
	users      UserChecker
	properties PropertyChecker
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, users UserChecker, properties PropertyChecker) *Service {
	return &Service{repo: repo, users: users, properties: properties}
}

// ListForUser returns all assignment rows for a user.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Assign links a user to a property. Re-assigning an existing pair succeeds
// without effect; the boolean reports whether a row was added.
func (s *Service) Assign(ctx context.Context, userID, propertyID int64) (bool, error) {
	if err := s.checkTargets(ctx, userID, propertyID); err != nil {
		return false, err
	}
	return s.repo.Create(ctx, userID, propertyID)
}

// Unassign removes the pair.
func (s *Service) Unassign(ctx context.Context, userID, propertyID int64) error {
	return s.repo.Delete(ctx, userID, propertyID)
}

func (s *Service) checkTargets(ctx context.Context, userID, propertyID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	ok, err = s.properties.Exists(ctx, propertyID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: property %d", shared.ErrNotFound, propertyID)
	}
	return nil
}
