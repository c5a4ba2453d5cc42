package data

// ArtistRelated says RelatedArtistID is similar to ArtistID. It is not
// mirrored, and an artist is never related to itself.
type ArtistRelated struct {
	ArtistID        int64 `gorm:"primaryKey;autoIncrement:false"`
	RelatedArtistID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (ArtistRelated) TableName() string { return "artist_related" }
