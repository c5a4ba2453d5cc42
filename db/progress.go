package db

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/data"
)

// Progress is a snapshot of how much of the graph we've crawled.
type Progress struct {
	Artists          int64
	ArtistsScraped   int64
	ArtistsEnriched  int64
	ArtistsDescribed int64
	Related          int64

	Albums       int64
	AlbumArtists int64

	Songs     int64
	TopTracks int64

	Genres       int64
	ArtistGenres int64
}

// Progress counts rows across the graph.
func (db *DB) Progress(ctx context.Context) (Progress, error) {
	var p Progress
	counts := []struct {
		name  string
		model any
		where string
		into  *int64
	}{
		{"artists", &data.Artist{}, "", &p.Artists},
		{"scraped artists", &data.Artist{}, "similar_artists_scraped = true", &p.ArtistsScraped},
		{"enriched artists", &data.Artist{}, "country is not null or born_in is not null", &p.ArtistsEnriched},
		{"described artists", &data.Artist{}, "description is not null", &p.ArtistsDescribed},
		{"related artists", &data.ArtistRelated{}, "", &p.Related},
		{"albums", &data.Album{}, "", &p.Albums},
		{"album artists", &data.AlbumArtist{}, "", &p.AlbumArtists},
		{"songs", &data.Song{}, "", &p.Songs},
		{"top tracks", &data.ArtistTopTrack{}, "", &p.TopTracks},
		{"genres", &data.Genre{}, "", &p.Genres},
		{"artist genres", &data.ArtistGenre{}, "", &p.ArtistGenres},
	}
	for _, c := range counts {
		q := db.WithContext(ctx).Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.into).Error; err != nil {
			return p, fmt.Errorf("error counting %s: %w", c.name, err)
		}
	}
	return p, nil
}
