package vehicles

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// RepositoryPort defines data access used by the service.
type RepositoryPort interface {
	List(ctx context.Context, propertyIDs []int64, f ListFilters, limit, offset int) ([]Vehicle, error)
	Count(ctx context.Context, propertyIDs []int64, f ListFilters) (int, error)
	FindByID(ctx context.Context, id int64) (Vehicle, error)
	Create(ctx context.Context, vehicle Vehicle) (Vehicle, error)
	Update(ctx context.Context, vehicle Vehicle) (Vehicle, error)
	Delete(ctx context.Context, id int64) error
}

// Authorizer answers policy questions for the acting principal.
type Authorizer interface {
	CanPerform(ctx context.Context, p authz.Principal, action authz.Action, res authz.Resource) (authz.Decision, error)
	FilterToScope(ctx context.Context, p authz.Principal, candidates []int64) ([]int64, error)
}

// Service handles vehicle business logic.
type Service struct {
	repo  RepositoryPort
	authz Authorizer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, authorizer Authorizer) *Service {
	return &Service{repo: repo, authz: authorizer}
}

const defaultPerPage = 20

// List returns one page of vehicles visible to the principal. The requested
// property filter is intersected with the principal's scope before the query
// runs, so rows outside the scope never leave storage. Asking for a property
// outside the scope yields an empty page, not an error.
func (s *Service) List(ctx context.Context, p authz.Principal, f ListFilters) (ListResult, shared.Pagination, error) {
	allowed, err := s.authz.FilterToScope(ctx, p, f.PropertyIDs)
	if err != nil {
		return ListResult{}, shared.Pagination{}, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = defaultPerPage
	}
	if len(allowed) == 0 {
		return ListResult{Vehicles: []Vehicle{}}, shared.NewPagination(f.Page, f.PerPage, 0), nil
	}

	var (
		page  []Vehicle
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.repo.List(gctx, allowed, f, f.PerPage, (f.Page-1)*f.PerPage)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, allowed, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, shared.Pagination{}, err
	}
	return ListResult{Vehicles: page, Total: total}, shared.NewPagination(f.Page, f.PerPage, total), nil
}

// Get fetches one vehicle after checking scoped read access against the row's
// property.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	if err := s.check(ctx, p, authz.ActionReadScoped, vehicle.PropertyID); err != nil {
		return Vehicle{}, err
	}
	return vehicle, nil
}

// Create registers a vehicle at a property after a scoped write check.
func (s *Service) Create(ctx context.Context, p authz.Principal, vehicle Vehicle) (Vehicle, error) {
	if err := validate(vehicle); err != nil {
		return Vehicle{}, err
	}
	if err := s.check(ctx, p, authz.ActionWriteScoped, vehicle.PropertyID); err != nil {
		return Vehicle{}, err
	}
	return s.repo.Create(ctx, vehicle)
}

// Update applies field changes. Writes are checked against the row's current
// property, and again against the target property when the vehicle moves. The
// returned map holds the changed fields for the audit trail.
func (s *Service) Update(ctx context.Context, p authz.Principal, vehicle Vehicle) (Vehicle, map[string]any, error) {
	if err := validate(vehicle); err != nil {
		return Vehicle{}, nil, err
	}
	current, err := s.repo.FindByID(ctx, vehicle.ID)
	if err != nil {
		return Vehicle{}, nil, err
	}
	if err := s.check(ctx, p, authz.ActionWriteScoped, current.PropertyID); err != nil {
		return Vehicle{}, nil, err
	}
	if vehicle.PropertyID != current.PropertyID {
		if err := s.check(ctx, p, authz.ActionWriteScoped, vehicle.PropertyID); err != nil {
			return Vehicle{}, nil, err
		}
	}
	updated, err := s.repo.Update(ctx, vehicle)
	if err != nil {
		return Vehicle{}, nil, err
	}
	return updated, diff(current, updated), nil
}

// Delete removes a vehicle after a scoped write check. The removed row is
// returned so callers can snapshot it into the audit trail.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) (Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	if err := s.check(ctx, p, authz.ActionWriteScoped, vehicle.PropertyID); err != nil {
		return Vehicle{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Vehicle{}, err
	}
	return vehicle, nil
}

func (s *Service) check(ctx context.Context, p authz.Principal, action authz.Action, propertyID int64) error {
	decision, err := s.authz.CanPerform(ctx, p, action, authz.ScopedTo(propertyID))
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &shared.PermissionError{Reason: decision.Reason}
	}
	return nil
}

func validate(vehicle Vehicle) error {
	if vehicle.LicensePlate == "" {
		return fmt.Errorf("%w: license plate is required", shared.ErrValidation)
	}
	if vehicle.PropertyID <= 0 {
		return fmt.Errorf("%w: property is required", shared.ErrValidation)
	}
	switch vehicle.Status {
	case StatusActive, StatusInactive, StatusFlagged:
	default:
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, vehicle.Status)
	}
	return nil
}

// diff reports the fields that changed between two revisions, keyed by the
// JSON field name with old and new values.
func diff(before, after Vehicle) map[string]any {
	changes := map[string]any{}
	record := func(field string, from, to any) {
		if from != to {
			changes[field] = map[string]any{"from": from, "to": to}
		}
	}
	record("property_id", before.PropertyID, after.PropertyID)
	record("license_plate", before.LicensePlate, after.LicensePlate)
	record("make", before.Make, after.Make)
	record("model", before.Model, after.Model)
	record("color", before.Color, after.Color)
	record("owner_name", before.OwnerName, after.OwnerName)
	record("unit_number", before.UnitNumber, after.UnitNumber)
	record("status", before.Status, after.Status)
	record("notes", before.Notes, after.Notes)
	return changes
}
