package users

import "time"

// User represents a user account for management. PasswordHash never leaves
// the service layer.
type User struct {
	ID           int64
	Username     string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
