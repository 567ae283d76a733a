// Package assignments maintains the flat user-to-property scope relation that
// governs what role "user" principals may see and change.
package assignments

import "time"

// Assignment links a user to a property. Pairs are unique; the relation
// carries no payload beyond timestamps.
type Assignment struct {
	UserID     int64
	PropertyID int64
	CreatedAt  time.Time
}
