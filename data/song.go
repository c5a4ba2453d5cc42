package data

import (
	"database/sql"
	"time"
)

// Song is a catalog track, owned by its first credited artist.
type Song struct {
	ID            int64 `gorm:"primaryKey"`
	SpotifyID     string
	Title         string
	ArtistID      int64
	GenreID       *int64
	AlbumName     *string
	AlbumImageURL *string
	ReleaseDate   *string
	DurationMS    int64 `gorm:"column:duration_ms"`
	Popularity    int64
	PreviewURL    *string
	SpotifyURL    *string
	ISRC          *string `gorm:"column:isrc"`

	// Audio features. The upstream endpoint is deprecated, so these are
	// usually zero.
	Danceability     float64
	Energy           float64
	Speechiness      float64
	Acousticness     float64
	Instrumentalness float64
	Liveness         float64
	Valence          float64
	Loudness         float64
	Tempo            float64
	Key              *int64
	Mode             *int64
	TimeSignature    int64
	KeySignature     *string

	Explicit     bool
	LastSyncedAt sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ArtistTopTrack is one entry of an artist's per-market top tracks.
type ArtistTopTrack struct {
	ArtistID int64  `gorm:"primaryKey;autoIncrement:false"`
	SongID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Market   string `gorm:"primaryKey"`
	Rank     int64
	SyncedAt sql.NullTime
}

func (ArtistTopTrack) TableName() string { return "artist_top_tracks" }
