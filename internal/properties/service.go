package properties

import (
	"context"
	"fmt"
	"strings"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// RepositoryPort defines data access methods for properties.
type RepositoryPort interface {
	ListByIDs(ctx context.Context, ids []int64) ([]Property, error)
	FindByID(ctx context.Context, id int64) (Property, error)
	Create(ctx context.Context, name, address string) (Property, error)
	Update(ctx context.Context, id int64, name, address string) (Property, error)
	Delete(ctx context.Context, id int64) error
}

// Scoper narrows listings to the caller's permitted property set.
type Scoper interface {
	FilterToScope(ctx context.Context, p authz.Principal, candidates []int64) ([]int64, error)
}

// Service handles property business logic.
type Service struct {
	repo   RepositoryPort
	scoper Scoper
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, scoper Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

// ListVisible returns the properties inside the caller's scope. A user with
// zero assignments gets an empty list, not an error.
func (s *Service) ListVisible(ctx context.Context, p authz.Principal) ([]Property, error) {
	ids, err := s.scoper.FilterToScope(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByIDs(ctx, ids)
}

// GetVisible fetches one property if it is inside the caller's scope.
// Out-of-scope ids surface as not-found so existence is not leaked.
func (s *Service) GetVisible(ctx context.Context, p authz.Principal, id int64) (Property, error) {
	allowed, err := s.scoper.FilterToScope(ctx, p, []int64{id})
	if err != nil {
		return Property{}, err
	}
	if len(allowed) == 0 {
		return Property{}, shared.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// Create inserts a property after trimming and validating the name.
func (s *Service) Create(ctx context.Context, name, address string) (Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Property{}, fmt.Errorf("%w: property name required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, name, strings.TrimSpace(address))
}

// Update applies name and address changes.
func (s *Service) Update(ctx context.Context, id int64, name, address string) (Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Property{}, fmt.Errorf("%w: property name required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, name, strings.TrimSpace(address))
}

// Delete removes a property. The caller receives the removed row so the audit
// entry can snapshot its name.
func (s *Service) Delete(ctx context.Context, id int64) (Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Property{}, err
	}
	return property, nil
}
