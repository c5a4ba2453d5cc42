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
	"github.com/rs/zerolog/log"
)

// ArtistsQuery selects artists to import: explicit catalog ids, a search
// query walked for Pages pages of Limit, or both.
type ArtistsQuery struct {
	IDs   []string
	Query string
	Limit int
	Pages int
}

// RunArtists fetches artists from the catalog and upserts them.
func (f *Fetcher) RunArtists(ctx context.Context, q ArtistsQuery) (Summary, error) {
	var sum Summary
	if len(q.IDs) == 0 && q.Query == "" {
		return sum, errors.New("no artist ids or query given")
	}

	if ids := chunk.Unique(q.IDs); len(ids) > 0 {
		artists, err := f.catalog.GetSeveralArtists(ctx, ids)
		if err != nil {
			return sum, fmt.Errorf("error fetching %d artists: %w", len(ids), err)
		}
		n, err := f.upsertArtists(ctx, artists)
		if err != nil {
			return sum, err
		}
		sum.ArtistsUpserted += n
		log.Printf("upserted %d artists by id", n)
	}

	if q.Query != "" {
		if err := validatePaging(q.Limit, q.Pages); err != nil {
			return sum, fmt.Errorf("invalid paging: %w", err)
		}
		found, err := pager.Walk(ctx, q.Pages, func(ctx context.Context, page int) (pager.Page[spotify.Artist], error) {
			p, err := f.catalog.SearchArtists(ctx, q.Query, q.Limit, pager.Offset(page, q.Limit))
			if err != nil {
				return pager.Page[spotify.Artist]{}, err
			}
			return pager.Page[spotify.Artist]{Items: p.Items, HasNext: p.HasNext()}, nil
		})
		if err != nil {
			return sum, fmt.Errorf("error searching artists for '%s': %w", q.Query, err)
		}
		n, err := f.upsertArtists(ctx, found)
		if err != nil {
			return sum, err
		}
		sum.ArtistsUpserted += n
		log.Printf("upserted %d artists for '%s'", n, q.Query)
	}

	return sum, nil
}

func (f *Fetcher) upsertArtists(ctx context.Context, artists []spotify.Artist) (int64, error) {
	rows := make([]data.Artist, len(artists))
	for i, a := range artists {
		rows[i] = mapper.Artist(a)
	}
	return f.db.UpsertArtists(ctx, rows)
}

// RunGenres collects the genre names on every stored artist into the genres
// table and, if it exists, links artists to their genres.
func (f *Fetcher) RunGenres(ctx context.Context) (Summary, error) {
	var sum Summary
	err := f.db.EachArtistBatch(ctx, 500, func(artists []data.Artist) error {
		var names []string
		var pairs []db.Pair
		for _, a := range artists {
			for _, name := range a.GenreNames() {
				names = append(names, name)
				if slug := mapper.Slug(name); slug != "" {
					pairs = append(pairs, db.Pair{Left: a.SpotifyID, Right: slug})
				}
			}
		}

		n, err := f.db.UpsertGenres(ctx, mapper.Genres(names))
		if err != nil {
			return err
		}
		sum.GenresUpserted += n

		if f.caps.ArtistGenre {
			n, err := f.db.ReconcileArtistGenres(ctx, pairs)
			if err != nil {
				return err
			}
			sum.GenresLinked += n
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	log.Info().EmbedObject(sum).Msg("genres finished")
	return sum, nil
}
