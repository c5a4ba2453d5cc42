package data

import (
	"database/sql"
	"time"
)

type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncSkipped SyncStatus = "skipped"
	SyncFailed  SyncStatus = "failed"
)

// SyncLog records one attempt at one unit of crawl work.
type SyncLog struct {
	ID           int64 `gorm:"primaryKey"`
	RunID        string
	SpotifyID    string
	EntityType   string
	Status       SyncStatus
	ErrorMessage *string
	Attempts     int64
	SyncedAt     sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
