package db

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

// Columns refreshed when an upserted row already exists. Everything else on
// the existing row is left alone.
var (
	ArtistColumns = []string{
		"name", "image_url", "popularity", "followers", "genres", "spotify_url", "updated_at",
	}
	AlbumColumns = []string{
		"name", "album_type", "release_date", "release_date_precision", "total_tracks", "label",
		"image_url", "images", "spotify_url", "uri", "available_markets", "updated_at",
	}
	SongColumns = []string{
		"title", "artist_id", "genre_id", "album_name", "album_image_url", "release_date",
		"duration_ms", "popularity", "preview_url", "spotify_url", "isrc",
		"explicit", "last_synced_at", "updated_at",
	}
	// SongFeatureColumns are only refreshed by callers that actually fetched
	// audio features.
	SongFeatureColumns = []string{
		"danceability", "energy", "speechiness", "acousticness", "instrumentalness",
		"liveness", "valence", "loudness", "tempo", "key", "mode", "time_signature", "key_signature",
	}
	GenreColumns = []string{"name", "updated_at"}
)

// Tx runs f inside a transaction. Calls on the *DB passed to f join that
// transaction.
func (db *DB) Tx(ctx context.Context, f func(tx *DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&DB{tx})
	})
}

// UpsertArtists inserts new artists and refreshes ArtistColumns on known ones.
func (db *DB) UpsertArtists(ctx context.Context, artists []data.Artist) (int64, error) {
	n, err := upsert(ctx, db.DB, artists, func(a data.Artist) string { return a.SpotifyID }, "spotify_id", ArtistColumns)
	if err != nil {
		return 0, fmt.Errorf("error upserting %d artists: %w", len(artists), err)
	}
	return n, nil
}

// UpsertAlbums inserts new albums and refreshes AlbumColumns on known ones.
func (db *DB) UpsertAlbums(ctx context.Context, albums []data.Album) (int64, error) {
	n, err := upsert(ctx, db.DB, albums, func(a data.Album) string { return a.SpotifyID }, "spotify_id", AlbumColumns)
	if err != nil {
		return 0, fmt.Errorf("error upserting %d albums: %w", len(albums), err)
	}
	return n, nil
}

// UpsertSongs inserts new songs and refreshes SongColumns on known ones. With
// withFeatures, the audio feature columns are refreshed too.
func (db *DB) UpsertSongs(ctx context.Context, songs []data.Song, withFeatures bool) (int64, error) {
	columns := SongColumns
	if withFeatures {
		columns = append(append([]string{}, SongColumns...), SongFeatureColumns...)
	}
	n, err := upsert(ctx, db.DB, songs, func(s data.Song) string { return s.SpotifyID }, "spotify_id", columns)
	if err != nil {
		return 0, fmt.Errorf("error upserting %d songs: %w", len(songs), err)
	}
	return n, nil
}

// UpsertGenres inserts genres by slug, refreshing the display name.
func (db *DB) UpsertGenres(ctx context.Context, genres []data.Genre) (int64, error) {
	n, err := upsert(ctx, db.DB, genres, func(g data.Genre) string { return g.Slug }, "slug", GenreColumns)
	if err != nil {
		return 0, fmt.Errorf("error upserting %d genres: %w", len(genres), err)
	}
	return n, nil
}

// upsert writes rows in one transaction. Rows repeating a key already seen in
// the batch are dropped, since a single statement may not touch a row twice.
func upsert[T any](ctx context.Context, gdb *gorm.DB, rows []T, keyOf func(T) string, key string, columns []string) (int64, error) {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]T, 0, len(rows))
	for _, row := range rows {
		k := keyOf(row)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, row)
	}
	if len(unique) == 0 {
		return 0, nil
	}

	var affected int64
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: key}},
				DoUpdates: clause.AssignmentColumns(columns),
			}).
			CreateInBatches(&unique, upsertBatchSize)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
