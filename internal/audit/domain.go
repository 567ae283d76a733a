// Package audit maintains the append-only trail of sensitive actions.
// Rows are inserted once and never updated or deleted; no mutation API
// exists anywhere in this package.
package audit

import "time"

// Audited action names. Handlers use these instead of ad hoc strings so the
// trail stays queryable.
const (
	ActionLogin  = "login"
	ActionLogout = "logout"

	ActionCreateVehicle = "create_vehicle"
	ActionUpdateVehicle = "update_vehicle"
	ActionDeleteVehicle = "delete_vehicle"

	ActionCreateProperty = "create_property"
	ActionUpdateProperty = "update_property"
	ActionDeleteProperty = "delete_property"

	ActionCreateUser = "create_user"
	ActionUpdateUser = "update_user"
	ActionDeleteUser = "delete_user"

	ActionAssignProperty   = "assign_property"
	ActionUnassignProperty = "unassign_property"
)

// Entity type names stored alongside each entry.
const (
	EntityVehicle    = "vehicle"
	EntityProperty   = "property"
	EntityUser       = "user"
	EntityAssignment = "assignment"
	EntitySession    = "session"
)

// Entry is what a handler hands to the logger after an authorized mutation
// succeeds. The actor's username is captured at write time so the trail stays
// accurate if the account is later renamed or removed.
type Entry struct {
	Action    string
	Entity    string
	EntityID  string
	Details   map[string]any
	IP        string
	UserAgent string
}

// TimelineFilters narrows the reporting queries over the trail.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one row of the reporting view.
type TimelineRow struct {
	At          time.Time `json:"at"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	ActionLabel string    `json:"action_label"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entity_id"`
	IP          string    `json:"ip,omitempty"`
}

// PagingInfo carries pagination metadata for the timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
