// Package fetcher runs crawl jobs: it pulls artists, albums, and tracks from
// the catalog and the similarity service and merges them into the database.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/enrich"
	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/resolve"
	"github.com/amonks/artistgraph/similar"
	"github.com/amonks/artistgraph/spotify"
)

// Catalog is the subset of the Spotify client the fetcher uses.
type Catalog interface {
	GetSeveralArtists(ctx context.Context, ids []string) ([]spotify.Artist, error)
	SearchArtists(ctx context.Context, q string, limit, offset int) (*spotify.Page[spotify.Artist], error)
	SearchArtistByName(ctx context.Context, name string, limit int) ([]spotify.Artist, error)
	SearchTracks(ctx context.Context, q string, limit, offset int) (*spotify.Page[spotify.Track], error)
	GetSeveralTracks(ctx context.Context, ids []string) ([]spotify.Track, error)
	GetArtistTopTracks(ctx context.Context, id, market string) ([]spotify.Track, error)
	GetArtistAlbums(ctx context.Context, id string, q spotify.AlbumsQuery) (*spotify.Page[spotify.SimpleAlbum], error)
	GetSeveralAlbums(ctx context.Context, ids []string) ([]spotify.Album, error)
	GetAlbumTracks(ctx context.Context, albumID string, limit, offset int) (*spotify.Page[spotify.SimpleTrack], error)
	GetAudioFeatures(ctx context.Context, ids []string) (map[string]spotify.AudioFeatures, error)
}

type Config struct {
	DB      *db.DB
	Catalog Catalog
	Similar similar.Source

	// Enricher may be nil, which disables enrichment.
	Enricher *enrich.Enricher

	// Capabilities says which relationship tables to write.
	Capabilities db.Capabilities

	ArtistDelay       time.Duration
	ResolveDelay      time.Duration
	ExpandDelay       time.Duration
	TopTracksDelay    time.Duration
	MinNameSimilarity float64
}

type Fetcher struct {
	db       *db.DB
	catalog  Catalog
	expander *similar.Expander
	resolver *resolve.Resolver
	enricher *enrich.Enricher
	caps     db.Capabilities

	artistPause    *limiter.Limiter
	topTracksPause *limiter.Limiter

	now func() time.Time
}

func New(cfg Config) *Fetcher {
	resolver := resolve.New(cfg.Catalog, limiter.Every(cfg.ResolveDelay))
	resolver.MinNameSimilarity = cfg.MinNameSimilarity
	return &Fetcher{
		db:             cfg.DB,
		catalog:        cfg.Catalog,
		expander:       similar.New(cfg.Similar, limiter.Every(cfg.ExpandDelay)),
		resolver:       resolver,
		enricher:       cfg.Enricher,
		caps:           cfg.Capabilities,
		artistPause:    limiter.Every(cfg.ArtistDelay),
		topTracksPause: limiter.Every(cfg.TopTracksDelay),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// fatal reports whether err should end a whole batch rather than one unit
// of it.
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, spotify.ErrCredentials) || ctx.Err() != nil
}

func abort(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("canceled: %w", ctx.Err())
	}
	return err
}
