package equipment

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusOperational = "operational"
	StatusMaintenance = "maintenance"
	StatusBroken      = "broken"
	StatusRetired     = "retired"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusOperational, StatusMaintenance, StatusBroken, StatusRetired:
		return true
	}
	return false
}

type Equipment struct {
	ID             uint64     `gorm:"primaryKey"`
	Name           string     `gorm:"type:text;not null"`
	Model          string     `gorm:"type:text;not null;default:''"`
	Serial         string     `gorm:"uniqueIndex;type:text;not null"`
	Status         string     `gorm:"index;type:text;not null;default:'operational'"`
	LocationID     *uint64    `gorm:"index"`
	CommissionedAt *time.Time `gorm:"type:timestamptz"`

	// free-form labels, filterable via ?tag=
	Tags pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

type Group struct {
	ID        uint64    `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// GroupMember is the equipment/group junction. Rows are reconciled against
// a desired set, never appended blindly.
type GroupMember struct {
	EquipmentID uint64 `gorm:"primaryKey"`
	GroupID     uint64 `gorm:"primaryKey;index"`
}

// PartLink is the equipment/part junction with a per-link quantity.
type PartLink struct {
	EquipmentID uint64 `gorm:"primaryKey"`
	PartID      uint64 `gorm:"primaryKey;index"`
	Quantity    int    `gorm:"not null;default:1"`
}
