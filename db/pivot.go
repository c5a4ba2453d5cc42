package db

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/artistgraph/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pivotBatchSize = 1000

// Pair relates two natural keys, such as an album's and an artist's Spotify
// ids.
type Pair struct {
	Left, Right string
}

type keySpace struct {
	table, column string
}

var (
	artistKeys = keySpace{"artists", "spotify_id"}
	albumKeys  = keySpace{"albums", "spotify_id"}
	songKeys   = keySpace{"songs", "spotify_id"}
	genreKeys  = keySpace{"genres", "slug"}
)

// ReconcileRelated links artists (Left) to their similar artists (Right).
// Pairs naming unknown artists, and self-pairs, are dropped. It returns the
// number of new rows.
func (db *DB) ReconcileRelated(ctx context.Context, pairs []Pair) (int64, error) {
	n, err := reconcile(ctx, db.DB, pairs, artistKeys, artistKeys, true, func(l, r int64) data.ArtistRelated {
		return data.ArtistRelated{ArtistID: l, RelatedArtistID: r}
	})
	if err != nil {
		return 0, fmt.Errorf("error reconciling related artists: %w", err)
	}
	return n, nil
}

// ReconcileAlbumArtists links albums (Left) to their credited artists
// (Right).
func (db *DB) ReconcileAlbumArtists(ctx context.Context, pairs []Pair) (int64, error) {
	n, err := reconcile(ctx, db.DB, pairs, albumKeys, artistKeys, false, func(l, r int64) data.AlbumArtist {
		return data.AlbumArtist{AlbumID: l, ArtistID: r}
	})
	if err != nil {
		return 0, fmt.Errorf("error reconciling album artists: %w", err)
	}
	return n, nil
}

// ReconcileArtistGenres links artists (Left, by Spotify id) to genres (Right,
// by slug).
func (db *DB) ReconcileArtistGenres(ctx context.Context, pairs []Pair) (int64, error) {
	n, err := reconcile(ctx, db.DB, pairs, artistKeys, genreKeys, false, func(l, r int64) data.ArtistGenre {
		return data.ArtistGenre{ArtistID: l, GenreID: r}
	})
	if err != nil {
		return 0, fmt.Errorf("error reconciling artist genres: %w", err)
	}
	return n, nil
}

// reconcile resolves every natural key with one lookup per key space, drops
// pairs that don't fully resolve, and inserts the rest, ignoring rows that
// already exist.
func reconcile[P any](ctx context.Context, gdb *gorm.DB, pairs []Pair, left, right keySpace, dropSelf bool, row func(l, r int64) P) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	gdb = gdb.WithContext(ctx)

	leftKeys := make([]string, 0, len(pairs))
	rightKeys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		leftKeys = append(leftKeys, p.Left)
		rightKeys = append(rightKeys, p.Right)
	}

	var leftIDs, rightIDs map[string]int64
	var err error
	if left == right {
		leftIDs, err = lookupIDs(gdb, left, append(leftKeys, rightKeys...))
		rightIDs = leftIDs
	} else {
		leftIDs, err = lookupIDs(gdb, left, leftKeys)
		if err == nil {
			rightIDs, err = lookupIDs(gdb, right, rightKeys)
		}
	}
	if err != nil {
		return 0, err
	}

	type idPair struct{ l, r int64 }
	seen := map[idPair]struct{}{}
	rows := make([]P, 0, len(pairs))
	for _, p := range pairs {
		l, ok := leftIDs[p.Left]
		if !ok {
			continue
		}
		r, ok := rightIDs[p.Right]
		if !ok {
			continue
		}
		if dropSelf && l == r {
			continue
		}
		if _, dup := seen[idPair{l, r}]; dup {
			continue
		}
		seen[idPair{l, r}] = struct{}{}
		rows = append(rows, row(l, r))
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := gdb.
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, pivotBatchSize)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// HasTopTracks reports whether any top tracks are stored for the artist in
// the market.
func (db *DB) HasTopTracks(ctx context.Context, artistID int64, market string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&data.ArtistTopTrack{}).
		Where("artist_id = ? and market = ?", artistID, market).
		Count(&count).
		Error; err != nil {
		return false, fmt.Errorf("error checking top tracks for artist %d in '%s': %w", artistID, market, err)
	}
	return count > 0, nil
}

// CountTopTracks counts the stored top tracks for the artist in the market.
func (db *DB) CountTopTracks(ctx context.Context, artistID int64, market string) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&data.ArtistTopTrack{}).
		Where("artist_id = ? and market = ?", artistID, market).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting top tracks for artist %d in '%s': %w", artistID, market, err)
	}
	return count, nil
}

// ReplaceTopTracks stores songSpotifyIDs, in rank order, as the artist's top
// tracks for the market. With force, the existing list for (artist, market)
// is deleted first. Ranks are contiguous from 1 over the songs that resolve.
func (db *DB) ReplaceTopTracks(ctx context.Context, artistID int64, market string, songSpotifyIDs []string, force bool) (int64, error) {
	var inserted int64
	err := db.Tx(ctx, func(tx *DB) error {
		if force {
			if err := tx.
				Where("artist_id = ? and market = ?", artistID, market).
				Delete(&data.ArtistTopTrack{}).
				Error; err != nil {
				return fmt.Errorf("error clearing top tracks: %w", err)
			}
		}

		ids, err := lookupIDs(tx.DB, songKeys, songSpotifyIDs)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		seen := map[int64]struct{}{}
		var rows []data.ArtistTopTrack
		for _, key := range songSpotifyIDs {
			id, ok := ids[key]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, data.ArtistTopTrack{
				ArtistID: artistID,
				SongID:   id,
				Market:   market,
				Rank:     int64(len(rows) + 1),
				SyncedAt: sqlTime(now),
			})
		}
		if len(rows) == 0 {
			return nil
		}

		res := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&rows, pivotBatchSize)
		if res.Error != nil {
			return fmt.Errorf("error inserting top tracks: %w", res.Error)
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error replacing top tracks for artist %d in '%s': %w", artistID, market, err)
	}
	return inserted, nil
}
