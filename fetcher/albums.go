package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/artistgraph/chunk"
	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/pager"
	"github.com/amonks/artistgraph/spotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type albumQuery struct {
	Market        string
	Limit         int
	Pages         int
	IncludeGroups []string
}

type albumsResult struct {
	Albums int64
	Linked int64
}

// syncAlbums walks an artist's album listing, fetches the full albums, and
// stores them, linked to the artist and to every other credited artist we
// know.
func (f *Fetcher) syncAlbums(ctx context.Context, artist *data.Artist, q albumQuery) (albumsResult, error) {
	var res albumsResult

	listed, err := pager.Walk(ctx, q.Pages, func(ctx context.Context, page int) (pager.Page[spotify.SimpleAlbum], error) {
		p, err := f.catalog.GetArtistAlbums(ctx, artist.SpotifyID, spotify.AlbumsQuery{
			Limit:         q.Limit,
			Offset:        pager.Offset(page, q.Limit),
			Market:        q.Market,
			IncludeGroups: q.IncludeGroups,
		})
		if err != nil {
			return pager.Page[spotify.SimpleAlbum]{}, err
		}
		return pager.Page[spotify.SimpleAlbum]{Items: p.Items, HasNext: p.HasNext()}, nil
	})
	if err != nil {
		return res, fmt.Errorf("error listing albums for '%s': %w", artist.SpotifyID, err)
	}

	ids := make([]string, 0, len(listed))
	for _, a := range listed {
		ids = append(ids, a.ID)
	}
	ids = chunk.Unique(ids)
	if len(ids) == 0 {
		log.Printf("no albums for '%s'", artist.Name)
		return res, nil
	}

	albums, err := f.catalog.GetSeveralAlbums(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("error fetching %d albums for '%s': %w", len(ids), artist.SpotifyID, err)
	}

	rows := make([]data.Album, len(albums))
	var pairs []db.Pair
	for i, a := range albums {
		rows[i] = mapper.Album(a)
		pairs = append(pairs, db.Pair{Left: a.ID, Right: artist.SpotifyID})
		for _, credited := range a.Artists {
			pairs = append(pairs, db.Pair{Left: a.ID, Right: credited.ID})
		}
	}
	if res.Albums, err = f.db.UpsertAlbums(ctx, rows); err != nil {
		return res, err
	}

	if f.caps.AlbumPivot {
		if res.Linked, err = f.db.ReconcileAlbumArtists(ctx, pairs); err != nil {
			return res, err
		}
	}

	log.Printf("stored %d albums for '%s'", len(rows), artist.Name)
	return res, nil
}

type AlbumsOptions struct {
	Market        string
	Limit         int
	Pages         int
	IncludeGroups []string
}

func (o AlbumsOptions) validate() error {
	crawl := DefaultOptions()
	crawl.Market = o.Market
	crawl.AlbumLimit = o.Limit
	crawl.AlbumPages = o.Pages
	crawl.IncludeGroups = o.IncludeGroups
	if err := crawl.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// RunAlbums refreshes albums for each artist.
func (f *Fetcher) RunAlbums(ctx context.Context, spotifyIDs []string, opts AlbumsOptions) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if err := opts.validate(); err != nil {
		return sum, err
	}

	for i, id := range spotifyIDs {
		if err := f.artistPause.Wait(ctx); err != nil {
			return sum, fmt.Errorf("canceled: %w", err)
		}

		o := Outcome{SpotifyID: id, Last: StatePersisting}
		artist, err := f.db.GetArtist(ctx, id)
		switch {
		case errors.Is(err, db.ErrNotFound):
			o.State, o.Reason = StateSkipped, "artist not found in db"
		case err != nil:
			o.State, o.Err = StateFailed, err
		default:
			res, err := f.syncAlbums(ctx, artist, albumQuery(opts))
			if err != nil {
				o.State, o.Err = StateFailed, err
			} else {
				o.State = StateDone
				sum.AlbumsUpserted += res.Albums
				sum.AlbumsLinked += res.Linked
			}
		}

		sum.record(o)
		f.recordSync(ctx, sum.RunID, "albums", o)
		logOutcome(o, i, len(spotifyIDs))
		if o.State == StateFailed && fatal(ctx, o.Err) {
			return sum, abort(ctx, o.Err)
		}
	}

	log.Info().EmbedObject(sum).Msg("albums finished")
	return sum, nil
}
