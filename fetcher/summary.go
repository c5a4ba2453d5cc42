package fetcher

import (
	"github.com/rs/zerolog"
)

// Summary counts what a batch did. Failed units are counted in Skipped
// too.
type Summary struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int

	ArtistsUpserted int64
	RelatedLinked   int64
	Enriched        int64
	SongsUpserted   int64
	TopTracksLinked int64
	AlbumsUpserted  int64
	AlbumsLinked    int64
	GenresUpserted  int64
	GenresLinked    int64
}

func (s *Summary) record(o Outcome) {
	switch o.State {
	case StateDone:
		s.Processed++
	case StateFailed:
		s.Failed++
		s.Skipped++
	default:
		s.Skipped++
	}
}

func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("run", s.RunID).
		Int("processed", s.Processed).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int64("artists", s.ArtistsUpserted).
		Int64("related", s.RelatedLinked).
		Int64("enriched", s.Enriched).
		Int64("songs", s.SongsUpserted).
		Int64("top_tracks", s.TopTracksLinked).
		Int64("albums", s.AlbumsUpserted).
		Int64("album_artists", s.AlbumsLinked).
		Int64("genres", s.GenresUpserted).
		Int64("artist_genres", s.GenresLinked)
}
