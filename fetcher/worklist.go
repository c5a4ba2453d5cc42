package fetcher

import (
	"context"
	"math/rand/v2"

	"github.com/amonks/artistgraph/chunk"
)

// WorkList selects the seed artists for a batch.
type WorkList struct {
	// ArtistIDs and SpotifyIDs name artists explicitly. If both are empty,
	// every stored artist is a candidate.
	ArtistIDs  []int64
	SpotifyIDs []string

	UnscrapedOnly bool
	Limit         int
	Shuffle       bool

	// Rand shuffles; nil uses the global source.
	Rand *rand.Rand
}

// Select resolves a work list to Spotify ids: explicit ids first, otherwise
// all (or all unscraped) artists, then shuffled, then cut to Limit.
func (f *Fetcher) Select(ctx context.Context, wl WorkList) ([]string, error) {
	var ids []string
	if len(wl.ArtistIDs) > 0 {
		converted, err := f.db.ArtistSpotifyIDs(ctx, wl.ArtistIDs)
		if err != nil {
			return nil, err
		}
		ids = append(ids, converted...)
	}
	ids = append(ids, wl.SpotifyIDs...)

	if len(wl.ArtistIDs) == 0 && len(wl.SpotifyIDs) == 0 {
		all, err := f.db.ListArtistSpotifyIDs(ctx, wl.UnscrapedOnly, 0)
		if err != nil {
			return nil, err
		}
		ids = all
	}
	ids = chunk.Unique(ids)

	if wl.Shuffle {
		shuffle := rand.Shuffle
		if wl.Rand != nil {
			shuffle = wl.Rand.Shuffle
		}
		shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	if wl.Limit > 0 && len(ids) > wl.Limit {
		ids = ids[:wl.Limit]
	}
	return ids, nil
}
