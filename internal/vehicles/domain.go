// Package vehicles manages vehicle records attached to properties. Every
// operation here is property-scoped: lists are filtered to the caller's
// permitted properties at query construction, and single-row actions are
// checked against the row's property before anything happens.
package vehicles

import "time"

// Vehicle statuses as stored and served.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusFlagged  = "flagged"
)

// Vehicle is one registered vehicle at a property.
type Vehicle struct {
	ID           int64     `json:"id"`
	PropertyID   int64     `json:"property_id"`
	LicensePlate string    `json:"license_plate"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Color        string    `json:"color"`
	OwnerName    string    `json:"owner_name"`
	UnitNumber   string    `json:"unit_number"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListFilters narrows a vehicle listing. PropertyIDs is the caller's requested
// property filter before scope intersection; empty means every permitted
// property. Search matches license plates and owner names.
type ListFilters struct {
	PropertyIDs []int64
	Search      string
	Status      string
	Page        int
	PerPage     int
}

// ListResult is one page of vehicles plus paging metadata.
type ListResult struct {
	Vehicles []Vehicle
	Total    int
}
