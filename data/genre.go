package data

import "time"

// Genre is a catalog genre name, keyed by its slug.
type Genre struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
