package db

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/artistgraph/data"
)

// RecordSync appends a sync log entry. Attempts counts every logged attempt
// at the same Spotify id, including this one.
func (db *DB) RecordSync(ctx context.Context, entry data.SyncLog) error {
	var previous int64
	if err := db.WithContext(ctx).
		Model(&data.SyncLog{}).
		Where("spotify_id = ? and entity_type = ?", entry.SpotifyID, entry.EntityType).
		Count(&previous).
		Error; err != nil {
		return fmt.Errorf("error counting sync attempts for '%s': %w", entry.SpotifyID, err)
	}
	entry.Attempts = previous + 1
	if !entry.SyncedAt.Valid {
		entry.SyncedAt = sqlTime(time.Now().UTC())
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("error recording sync for '%s': %w", entry.SpotifyID, err)
	}
	return nil
}

// SyncLogs lists a run's sync log entries in insertion order.
func (db *DB) SyncLogs(ctx context.Context, runID string) ([]data.SyncLog, error) {
	var logs []data.SyncLog
	if err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id").
		Find(&logs).
		Error; err != nil {
		return nil, fmt.Errorf("error listing sync logs for run '%s': %w", runID, err)
	}
	return logs, nil
}
