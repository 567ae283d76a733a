package properties

import "time"

// Property is a managed physical site. Existence is owned here; per-user
// visibility is decided by the authorization scope.
type Property struct {
	ID        int64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
