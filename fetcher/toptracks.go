package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/spotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type topTracksResult struct {
	Step
	Songs  int64
	Linked int64
}

// syncTopTracks stores an artist's top tracks for a market. Unless forced,
// artists that already have top tracks there are skipped.
func (f *Fetcher) syncTopTracks(ctx context.Context, artist *data.Artist, market string, force bool) (topTracksResult, error) {
	var res topTracksResult
	if f.caps.TopTrackPivot && !force {
		has, err := f.db.HasTopTracks(ctx, artist.ID, market)
		if err != nil {
			return res, err
		}
		if has {
			res.Step = skip("already have top tracks in %s", market)
			return res, nil
		}
	}

	tracks, err := f.catalog.GetArtistTopTracks(ctx, artist.SpotifyID, market)
	if err != nil {
		return res, fmt.Errorf("error fetching top tracks for '%s': %w", artist.SpotifyID, err)
	}
	if len(tracks) == 0 {
		res.Step = skip("no top tracks in %s", market)
		return res, nil
	}

	songs, err := f.songRows(ctx, tracks, artist.ID)
	if err != nil {
		return res, err
	}
	if res.Songs, err = f.db.UpsertSongs(ctx, songs, false); err != nil {
		return res, err
	}

	if f.caps.TopTrackPivot {
		ids := make([]string, len(tracks))
		for i, t := range tracks {
			ids[i] = t.ID
		}
		if res.Linked, err = f.db.ReplaceTopTracks(ctx, artist.ID, market, ids, force); err != nil {
			return res, err
		}
	}

	log.Printf("stored %d top tracks for '%s' in %s", len(songs), artist.Name, market)
	return res, nil
}

// songRows maps tracks to songs. A track belongs to its first credited
// artist when we know that artist, and otherwise to fallbackOwner. With no
// fallback (zero), tracks by unknown artists are dropped.
func (f *Fetcher) songRows(ctx context.Context, tracks []spotify.Track, fallbackOwner int64) ([]data.Song, error) {
	primaries := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if id := mapper.PrimaryArtistID(t); id != "" {
			primaries = append(primaries, id)
		}
	}
	owners, err := f.db.ArtistIDs(ctx, primaries)
	if err != nil {
		return nil, err
	}

	ownerOf := func(t spotify.Track) int64 {
		if id, ok := owners[mapper.PrimaryArtistID(t)]; ok {
			return id
		}
		return fallbackOwner
	}

	genres := map[int64]int64{}
	if f.caps.ArtistGenre {
		var ownerIDs []int64
		for _, t := range tracks {
			if id := ownerOf(t); id != 0 {
				ownerIDs = append(ownerIDs, id)
			}
		}
		if genres, err = f.db.PrimaryGenres(ctx, ownerIDs); err != nil {
			return nil, err
		}
	}

	now := f.now()
	songs := make([]data.Song, 0, len(tracks))
	for _, t := range tracks {
		owner := ownerOf(t)
		if owner == 0 {
			log.Debug().Str("track", t.ID).Msg("dropping track by unknown artist")
			continue
		}
		var genreID *int64
		if g, ok := genres[owner]; ok {
			genreID = &g
		}
		songs = append(songs, mapper.Track(t, owner, genreID, now))
	}
	return songs, nil
}

type TopTracksOptions struct {
	Market       string
	ForceRefresh bool
}

// RunTopTracks refreshes top tracks for each artist, pausing between
// artists.
func (f *Fetcher) RunTopTracks(ctx context.Context, spotifyIDs []string, opts TopTracksOptions) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if err := validateMarket(opts.Market); err != nil {
		return sum, fmt.Errorf("invalid market: %w", err)
	}

	for i, id := range spotifyIDs {
		if err := f.topTracksPause.Wait(ctx); err != nil {
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
			res, err := f.syncTopTracks(ctx, artist, opts.Market, opts.ForceRefresh)
			switch {
			case err != nil:
				o.State, o.Err = StateFailed, err
			case res.Skip:
				o.State, o.Reason = StateSkipped, res.Reason
			default:
				o.State = StateDone
				sum.SongsUpserted += res.Songs
				sum.TopTracksLinked += res.Linked
			}
		}

		sum.record(o)
		f.recordSync(ctx, sum.RunID, "top_tracks", o)
		logOutcome(o, i, len(spotifyIDs))
		if o.State == StateFailed && fatal(ctx, o.Err) {
			return sum, abort(ctx, o.Err)
		}
	}

	log.Info().EmbedObject(sum).Msg("top tracks finished")
	return sum, nil
}

func logOutcome(o Outcome, i, n int) {
	ev := log.Info()
	switch o.State {
	case StateFailed:
		ev = log.Error().Err(o.Err).Stringer("at", o.Last)
	case StateSkipped:
		ev = log.Warn().Stringer("at", o.Last)
	}
	ev.Str("artist", o.SpotifyID).
		Stringer("state", o.State).
		Str("reason", o.Reason).
		Msgf("[%d/%d]", i+1, n)
}
