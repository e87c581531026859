package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleOfficer   StaffRole = "officer"
	StaffRoleExecutive StaffRole = "executive"
	StaffRoleAdmin     StaffRole = "admin"
)

// Availability is the roster status a staff member sets for themselves,
// independent of how many cases they carry.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

// StaffMember models a sector caseworker or administrator.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         StaffRole
	Availability Availability
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffCaseLoad pairs a roster member with counts derived from the case set
// at read time. Nothing here is stored on the staff row.
type StaffCaseLoad struct {
	Staff             StaffMember
	ActiveCases       int
	ResolvedThisMonth int
}

// ValidAvailability reports whether a is a known roster status.
func ValidAvailability(a Availability) bool {
	return a == AvailabilityAvailable || a == AvailabilityBusy || a == AvailabilityOffline
}

// CanAssignOthers reports whether the role may assign cases to other staff.
// Officers may only self-assign.
func (r StaffRole) CanAssignOthers() bool {
	return r == StaffRoleExecutive || r == StaffRoleAdmin
}
