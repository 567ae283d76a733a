// Package authz implements the authorization core: principal resolution,
// property scoping, and the centralized role/action policy table.
package authz

// Role names as they appear on account rows and across the API boundary.
const (
	RoleNameAdmin    = "admin"
	RoleNameOperator = "operator"
	RoleNameUser     = "user"
)

// Role is the closed set of privilege groupings. Operator and User are
// disjoint, not nested: Operator reads everywhere and writes nowhere, User
// reads and writes only within its assigned property scope.
type Role int

const (
	// RoleUnknown is the zero value and carries no privilege at all.
	RoleUnknown Role = iota
	RoleAdmin
	RoleOperator
	RoleUser
)

// ParseRole maps a stored role string onto the closed enum. Anything outside
// the fixed vocabulary resolves to RoleUnknown, never to a privileged default.
func ParseRole(name string) Role {
	switch name {
	case RoleNameAdmin:
		return RoleAdmin
	case RoleNameOperator:
		return RoleOperator
	case RoleNameUser:
		return RoleUser
	default:
		return RoleUnknown
	}
}

// String returns the wire name for the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return RoleNameAdmin
	case RoleOperator:
		return RoleNameOperator
	case RoleUser:
		return RoleNameUser
	default:
		return "unknown"
	}
}

// Principal describes the authenticated actor for the duration of one request.
type Principal struct {
	ID       int64
	Username string
	Role     Role
}

// Action classifies what a request wants to do.
type Action int

const (
	// ActionReadScoped reads a resource attached to a property.
	ActionReadScoped Action = iota
	// ActionWriteScoped creates, updates or deletes a property-scoped resource.
	ActionWriteScoped
	// ActionReadGlobal reads resources outside property scoping, e.g. accounts.
	ActionReadGlobal
	// ActionWriteGlobal mutates resources outside property scoping.
	ActionWriteGlobal
)

// Resource identifies the target of a scoped action. The zero value stands
// for non-property-scoped resources.
type Resource struct {
	PropertyID int64
}

// Global is the resource value for actions without property scoping.
var Global = Resource{}

// ScopedTo builds a resource reference for the given property.
func ScopedTo(propertyID int64) Resource {
	return Resource{PropertyID: propertyID}
}

// Denial reasons surfaced to clients on 403 responses. Fixed set; call sites
// never invent their own wording.
const (
	ReasonOperatorReadOnly   = "Operators have read-only access"
	ReasonPropertyNotInScope = "Property not in your assigned scope"
	ReasonAdminRequired      = "Administrator privilege required"
	ReasonNoAccess           = "Account role has no access"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denial carrying one of the fixed reasons.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
