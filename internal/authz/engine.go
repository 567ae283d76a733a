package authz

import "context"

// Engine answers every allow/deny question in the system. The policy table
// lives in Decide and nowhere else; handlers and middleware consult it instead
// of re-implementing role checks per call site.
type Engine struct {
	scopes *ScopeResolver
}

// NewEngine constructs an Engine backed by the given scope resolver.
func NewEngine(scopes *ScopeResolver) *Engine {
	return &Engine{scopes: scopes}
}

// Decide is the authoritative policy table. It is a pure function of the
// role, scope membership, and action; identical inputs always yield the same
// decision.
func Decide(role Role, inScope bool, action Action) Decision {
	switch role {
	case RoleAdmin:
		return Allow()
	case RoleOperator:
		switch action {
		case ActionReadScoped:
			return Allow()
		case ActionWriteScoped:
			return Deny(ReasonOperatorReadOnly)
		default:
			return Deny(ReasonAdminRequired)
		}
	case RoleUser:
		switch action {
		case ActionReadScoped, ActionWriteScoped:
			if inScope {
				return Allow()
			}
			return Deny(ReasonPropertyNotInScope)
		default:
			return Deny(ReasonAdminRequired)
		}
	default:
		return Deny(ReasonNoAccess)
	}
}

// CanPerform evaluates the policy table for a principal acting on a resource.
// Scope is only consulted where the table depends on it (User role, scoped
// actions); all other cells resolve from the role alone.
func (e *Engine) CanPerform(ctx context.Context, p Principal, action Action, res Resource) (Decision, error) {
	inScope := false
	if p.Role == RoleUser && (action == ActionReadScoped || action == ActionWriteScoped) {
		scope, err := e.scopes.Scope(ctx, p)
		if err != nil {
			return Decision{}, err
		}
		inScope = scope.Contains(res.PropertyID)
	}
	return Decide(p.Role, inScope, action), nil
}

// FilterToScope intersects candidate property IDs with the principal's
// permitted set. List handlers apply the result to query construction so
// out-of-scope rows never leave storage. An empty candidates slice asks for
// the full permitted set.
func (e *Engine) FilterToScope(ctx context.Context, p Principal, candidates []int64) ([]int64, error) {
	scope, err := e.scopes.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return scope.IDs(), nil
	}
	allowed := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if scope.Contains(id) {
			allowed = append(allowed, id)
		}
	}
	return allowed, nil
}
