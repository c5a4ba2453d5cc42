package data

import (
	"time"

	"gorm.io/datatypes"
)

// Album is a catalog album. ReleaseDate is kept at whatever precision the
// catalog reported.
type Album struct {
	ID                   int64 `gorm:"primaryKey"`
	SpotifyID            string
	Name                 string
	AlbumType            *string
	ReleaseDate          *string
	ReleaseDatePrecision *string
	TotalTracks          int64
	Label                *string
	ImageURL             *string
	Images               datatypes.JSON
	SpotifyURL           *string
	URI                  *string
	AvailableMarkets     datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlbumArtist links an album to each of its credited artists.
type AlbumArtist struct {
	AlbumID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ArtistID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (AlbumArtist) TableName() string { return "album_artist" }
