package domain

import "time"

// AdminStatus represents lifecycle states for platform administrators.
type AdminStatus string

const (
	AdminStatusActive    AdminStatus = "ACTIVE"
	AdminStatusSuspended AdminStatus = "SUSPENDED"
)

// Admin models an operator of the tenant-management API.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       AdminStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
