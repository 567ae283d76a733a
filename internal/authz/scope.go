package authz

import (
	"context"
	"fmt"
	"sort"
)

// PropertyIDSource lists every property identifier currently in the store.
type PropertyIDSource interface {
	ListPropertyIDs(ctx context.Context) ([]int64, error)
}

// AssignmentSource lists the property identifiers assigned to one user.
type AssignmentSource interface {
	PropertyIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}

// Scope is the set of property identifiers a principal may access.
type Scope map[int64]struct{}

// Contains reports whether the property is inside the scope.
func (s Scope) Contains(propertyID int64) bool {
	_, ok := s[propertyID]
	return ok
}

// IDs returns the scope as a sorted slice for query construction.
func (s Scope) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ScopeResolver computes the accessible property set for a principal. Every
// call reads the backing store fresh: assignment edits and new properties are
// visible on the very next check, so no caching layer sits in front of this.
type ScopeResolver struct {
	properties  PropertyIDSource
	assignments AssignmentSource
}

// NewScopeResolver constructs a ScopeResolver.
func NewScopeResolver(properties PropertyIDSource, assignments AssignmentSource) *ScopeResolver {
	return &ScopeResolver{properties: properties, assignments: assignments}
}

// Scope resolves the property set for the principal. Admin and Operator see
// every property in the store; User sees exactly its assignment rows. An empty
// result is a valid scope, not an error.
func (r *ScopeResolver) Scope(ctx context.Context, p Principal) (Scope, error) {
	switch p.Role {
	case RoleAdmin, RoleOperator:
		ids, err := r.properties.ListPropertyIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("authz: list property ids: %w", err)
		}
		return toScope(ids), nil
	case RoleUser:
		ids, err := r.assignments.PropertyIDsForUser(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("authz: list assignments for user %d: %w", p.ID, err)
		}
		return toScope(ids), nil
	default:
		return Scope{}, nil
	}
}

func toScope(ids []int64) Scope {
	scope := make(Scope, len(ids))
	for _, id := range ids {
		scope[id] = struct{}{}
	}
	return scope
}
