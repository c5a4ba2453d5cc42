package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/artistgraph/chunk"
	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/pager"
	"github.com/amonks/artistgraph/spotify"
	"github.com/rs/zerolog/log"
)

// SongsQuery selects tracks to import. Any combination of sources may be
// given.
type SongsQuery struct {
	IDs      []string
	Query    string
	AlbumID  string
	ArtistID string // imports the artist's top tracks in Market
	Market   string
	Limit    int
	Pages    int
}

// RunSongs fetches tracks, with their audio features where the catalog still
// serves them, and upserts them as songs. Tracks whose first credited artist
// isn't stored are dropped.
func (f *Fetcher) RunSongs(ctx context.Context, q SongsQuery) (Summary, error) {
	var sum Summary
	if len(q.IDs) == 0 && q.Query == "" && q.AlbumID == "" && q.ArtistID == "" {
		return sum, errors.New("no track ids, query, album, or artist given")
	}

	var tracks []spotify.Track
	if ids := chunk.Unique(q.IDs); len(ids) > 0 {
		got, err := f.catalog.GetSeveralTracks(ctx, ids)
		if err != nil {
			return sum, fmt.Errorf("error fetching %d tracks: %w", len(ids), err)
		}
		tracks = append(tracks, got...)
	}

	if q.Query != "" || q.AlbumID != "" {
		if err := validatePaging(q.Limit, q.Pages); err != nil {
			return sum, fmt.Errorf("invalid paging: %w", err)
		}
	}

	if q.Query != "" {
		got, err := pager.Walk(ctx, q.Pages, func(ctx context.Context, page int) (pager.Page[spotify.Track], error) {
			p, err := f.catalog.SearchTracks(ctx, q.Query, q.Limit, pager.Offset(page, q.Limit))
			if err != nil {
				return pager.Page[spotify.Track]{}, err
			}
			return pager.Page[spotify.Track]{Items: p.Items, HasNext: p.HasNext()}, nil
		})
		if err != nil {
			return sum, fmt.Errorf("error searching tracks for '%s': %w", q.Query, err)
		}
		tracks = append(tracks, got...)
	}

	if q.AlbumID != "" {
		listed, err := pager.Walk(ctx, q.Pages, func(ctx context.Context, page int) (pager.Page[spotify.SimpleTrack], error) {
			p, err := f.catalog.GetAlbumTracks(ctx, q.AlbumID, q.Limit, pager.Offset(page, q.Limit))
			if err != nil {
				return pager.Page[spotify.SimpleTrack]{}, err
			}
			return pager.Page[spotify.SimpleTrack]{Items: p.Items, HasNext: p.HasNext()}, nil
		})
		if err != nil {
			return sum, fmt.Errorf("error listing tracks of album '%s': %w", q.AlbumID, err)
		}
		ids := make([]string, len(listed))
		for i, t := range listed {
			ids[i] = t.ID
		}
		// album listings lack popularity and isrc
		got, err := f.catalog.GetSeveralTracks(ctx, chunk.Unique(ids))
		if err != nil {
			return sum, fmt.Errorf("error fetching tracks of album '%s': %w", q.AlbumID, err)
		}
		tracks = append(tracks, got...)
	}

	if q.ArtistID != "" {
		if err := validateMarket(q.Market); err != nil {
			return sum, fmt.Errorf("invalid market: %w", err)
		}
		got, err := f.catalog.GetArtistTopTracks(ctx, q.ArtistID, q.Market)
		if err != nil {
			return sum, fmt.Errorf("error fetching top tracks for '%s': %w", q.ArtistID, err)
		}
		tracks = append(tracks, got...)
	}

	if len(tracks) == 0 {
		log.Printf("no tracks found")
		return sum, nil
	}

	songs, err := f.songRows(ctx, tracks, 0)
	if err != nil {
		return sum, err
	}
	if len(songs) == 0 {
		log.Printf("none of %d tracks has a stored artist", len(tracks))
		return sum, nil
	}

	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.SpotifyID
	}
	features, err := f.catalog.GetAudioFeatures(ctx, chunk.Unique(ids))
	if err != nil {
		if fatal(ctx, err) {
			return sum, abort(ctx, err)
		}
		log.Warn().Err(err).Msg("audio features unavailable")
	}
	for i := range songs {
		if feat, ok := features[songs[i].SpotifyID]; ok {
			mapper.ApplyAudioFeatures(&songs[i], feat)
		}
	}

	n, err := f.db.UpsertSongs(ctx, songs, true)
	if err != nil {
		return sum, err
	}
	sum.SongsUpserted = n
	log.Printf("upserted %d of %d tracks (%d with audio features)", len(songs), len(tracks), len(features))
	return sum, nil
}
