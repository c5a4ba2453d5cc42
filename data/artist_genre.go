package data

// ArtistGenre associates an artist with one of its genres.
type ArtistGenre struct {
	ArtistID int64 `gorm:"primaryKey;autoIncrement:false"`
	GenreID  int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (ArtistGenre) TableName() string { return "artist_genre" }
