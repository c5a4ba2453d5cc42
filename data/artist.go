package data

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Artist is a catalog artist, keyed by SpotifyID. Rows are created on first
// sight and refreshed whenever a later fetch surfaces the same SpotifyID.
type Artist struct {
	ID         int64 `gorm:"primaryKey"`
	SpotifyID  string
	Name       string
	ImageURL   *string
	Popularity int64
	Followers  int64
	Genres     datatypes.JSON
	SpotifyURL *string

	FacebookURL   *string
	TwitterURL    *string
	InstagramURL  *string
	YoutubeURL    *string
	SoundcloudURL *string
	MyspaceURL    *string
	BandcampURL   *string
	TiktokURL     *string
	DiscogsURL    *string

	BornDate    sql.NullTime
	BornIn      *string
	Gender      *string
	Country     *string
	Description *string

	SimilarArtistsScraped bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenreNames decodes the stored genre list. Malformed or empty lists decode
// to nil.
func (a *Artist) GenreNames() []string {
	return decodeStrings(a.Genres)
}
