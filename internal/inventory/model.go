package inventory

import "time"

type Part struct {
	ID          uint64    `gorm:"primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Reference   string    `gorm:"uniqueIndex;type:text;not null"`
	Quantity    int       `gorm:"not null;default:0"`
	MinQuantity int       `gorm:"not null;default:0"`
	UnitCost    float64   `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

// LowStock reports whether the part is at or below its reorder threshold.
func (p Part) LowStock() bool {
	return p.MinQuantity > 0 && p.Quantity <= p.MinQuantity
}
