package auth

import "time"

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleViewer     = "viewer"
)

// User is a staff member. Role gates mutating endpoints.
type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"type:text;not null;default:''"`
	Role         string    `gorm:"type:text;not null;default:'technician'"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleViewer:
		return true
	}
	return false
}
