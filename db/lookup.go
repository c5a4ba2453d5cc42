package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amonks/artistgraph/data"
	"gorm.io/gorm"
)

// lookupIDs maps natural keys to local ids with a single query. Keys that
// don't exist are absent from the result.
func lookupIDs(gdb *gorm.DB, space keySpace, keys []string) (map[string]int64, error) {
	ids := map[string]int64{}
	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return ids, nil
	}

	var rows []struct {
		ID         int64
		NaturalKey string
	}
	if err := gdb.
		Table(space.table).
		Select(fmt.Sprintf("id, %s as natural_key", space.column)).
		Where(fmt.Sprintf("%s in ?", space.column), keys).
		Scan(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error looking up %d %s: %w", len(keys), space.table, err)
	}
	for _, row := range rows {
		ids[row.NaturalKey] = row.ID
	}
	return ids, nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func sqlTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

// ArtistIDs maps artist Spotify ids to local ids.
func (db *DB) ArtistIDs(ctx context.Context, spotifyIDs []string) (map[string]int64, error) {
	return lookupIDs(db.WithContext(ctx), artistKeys, spotifyIDs)
}

// AlbumIDs maps album Spotify ids to local ids.
func (db *DB) AlbumIDs(ctx context.Context, spotifyIDs []string) (map[string]int64, error) {
	return lookupIDs(db.WithContext(ctx), albumKeys, spotifyIDs)
}

// SongIDs maps song Spotify ids to local ids.
func (db *DB) SongIDs(ctx context.Context, spotifyIDs []string) (map[string]int64, error) {
	return lookupIDs(db.WithContext(ctx), songKeys, spotifyIDs)
}

// GetArtist fetches an artist by Spotify id, returning ErrNotFound if we
// don't know it.
func (db *DB) GetArtist(ctx context.Context, spotifyID string) (*data.Artist, error) {
	var artist data.Artist
	if err := db.WithContext(ctx).
		Where("spotify_id = ?", spotifyID).
		Take(&artist).
		Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("artist '%s': %w", spotifyID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting artist '%s': %w", spotifyID, err)
	}
	return &artist, nil
}

// ArtistSpotifyIDs converts local artist ids into Spotify ids, dropping ids
// we don't know.
func (db *DB) ArtistSpotifyIDs(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var spotifyIDs []string
	if err := db.WithContext(ctx).
		Model(&data.Artist{}).
		Where("id in ?", ids).
		Order("id").
		Pluck("spotify_id", &spotifyIDs).
		Error; err != nil {
		return nil, fmt.Errorf("error converting %d artist ids: %w", len(ids), err)
	}
	return spotifyIDs, nil
}

// ListArtistSpotifyIDs lists known artists' Spotify ids in id order, optionally
// only those whose similar artists haven't been scraped. A non-positive limit
// means no limit.
func (db *DB) ListArtistSpotifyIDs(ctx context.Context, unscrapedOnly bool, limit int) ([]string, error) {
	q := db.WithContext(ctx).Model(&data.Artist{}).Order("id")
	if unscrapedOnly {
		q = q.Where("similar_artists_scraped = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var spotifyIDs []string
	if err := q.Pluck("spotify_id", &spotifyIDs).Error; err != nil {
		return nil, fmt.Errorf("error listing artists: %w", err)
	}
	return spotifyIDs, nil
}

// MarkSimilarScraped flags the artist's similar artists as fetched.
func (db *DB) MarkSimilarScraped(ctx context.Context, spotifyID string) error {
	if err := db.WithContext(ctx).
		Model(&data.Artist{}).
		Where("spotify_id = ?", spotifyID).
		Updates(map[string]any{
			"similar_artists_scraped": true,
			"updated_at":              time.Now().UTC(),
		}).
		Error; err != nil {
		return fmt.Errorf("error marking artist '%s' similar artists as scraped: %w", spotifyID, err)
	}
	return nil
}

// UpdateArtistProfile sets the given columns on an artist. Nothing happens
// for an empty update.
func (db *DB) UpdateArtistProfile(ctx context.Context, spotifyID string, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	columns["updated_at"] = time.Now().UTC()
	if err := db.WithContext(ctx).
		Model(&data.Artist{}).
		Where("spotify_id = ?", spotifyID).
		Updates(columns).
		Error; err != nil {
		return fmt.Errorf("error updating profile for artist '%s': %w", spotifyID, err)
	}
	return nil
}

// PrimaryGenres picks one genre per artist, the lowest genre id among its
// associations. Artists without any association are absent.
func (db *DB) PrimaryGenres(ctx context.Context, artistIDs []int64) (map[int64]int64, error) {
	genres := map[int64]int64{}
	if len(artistIDs) == 0 {
		return genres, nil
	}
	var rows []struct {
		ArtistID int64
		GenreID  int64
	}
	if err := db.WithContext(ctx).
		Model(&data.ArtistGenre{}).
		Select("artist_id, min(genre_id) as genre_id").
		Where("artist_id in ?", artistIDs).
		Group("artist_id").
		Scan(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error looking up genres for %d artists: %w", len(artistIDs), err)
	}
	for _, row := range rows {
		genres[row.ArtistID] = row.GenreID
	}
	return genres, nil
}

// EachArtistBatch calls f with every stored artist, size at a time, in id
// order.
func (db *DB) EachArtistBatch(ctx context.Context, size int, f func([]data.Artist) error) error {
	var batch []data.Artist
	res := db.WithContext(ctx).
		Model(&data.Artist{}).
		FindInBatches(&batch, size, func(tx *gorm.DB, n int) error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("canceled: %w", err)
			}
			return f(batch)
		})
	if res.Error != nil {
		return fmt.Errorf("error iterating artists: %w", res.Error)
	}
	return nil
}
