package facility

import "time"

// Building -> Service -> Location hierarchy. Equipment hangs off locations.
type Building struct {
	ID        uint64    `gorm:"primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Address   string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type Service struct {
	ID         uint64    `gorm:"primaryKey"`
	BuildingID uint64    `gorm:"index;not null"`
	Name       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null;default:now()"`
}

type Location struct {
	ID        uint64    `gorm:"primaryKey"`
	ServiceID uint64    `gorm:"index;not null"`
	Name      string    `gorm:"type:text;not null"`
	Floor     string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}
