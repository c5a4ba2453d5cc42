package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/resolve"
	"github.com/amonks/artistgraph/similar"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// unit is the working state of one seed artist's crawl.
type unit struct {
	spotifyID  string
	seed       *data.Artist
	candidates []similar.Artist
	matches    []resolve.Match
}

type step struct {
	state State
	name  string
	run   func(ctx context.Context, u *unit, opts Options, sum *Summary) (Step, error)
}

func (f *Fetcher) crawlSteps() []step {
	return []step{
		{StateResolving, "resolve seed", f.resolveSeed},
		{StateExpanding, "expand", f.expand},
		{StateMatching, "match", f.match},
		{StatePersisting, "upsert artists", f.persistArtists},
		{StateReconciling, "link related", f.linkRelated},
		{StateReconciling, "enrich", f.enrichSeed},
		{StateReconciling, "top tracks", f.seedTopTracks},
		{StateReconciling, "albums", f.seedAlbums},
	}
}

// RunBatch crawls each seed artist in turn: it expands the seed's similar
// artists, matches them to the catalog, stores them and their relation to
// the seed, and then refreshes the seed's top tracks and albums.
//
// A unit that fails is logged, counted as skipped, and the batch moves on.
// Only a credentials failure or cancellation ends the batch early, in which
// case the summary so far is returned with the error.
func (f *Fetcher) RunBatch(ctx context.Context, spotifyIDs []string, opts Options) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if err := opts.Validate(); err != nil {
		return sum, fmt.Errorf("invalid options: %w", err)
	}

	log.Printf("crawling %d artists (run %s)", len(spotifyIDs), sum.RunID)
	for i, id := range spotifyIDs {
		if err := f.artistPause.Wait(ctx); err != nil {
			return sum, fmt.Errorf("canceled: %w", err)
		}

		o := f.crawlOne(ctx, id, opts, &sum)
		sum.record(o)
		f.recordSync(ctx, sum.RunID, "artist", o)
		logOutcome(o, i, len(spotifyIDs))
		if o.State == StateFailed && fatal(ctx, o.Err) {
			return sum, abort(ctx, o.Err)
		}
	}

	log.Info().EmbedObject(sum).Msg("crawl finished")
	return sum, nil
}

func (f *Fetcher) crawlOne(ctx context.Context, spotifyID string, opts Options, sum *Summary) Outcome {
	u := &unit{spotifyID: spotifyID}
	o := Outcome{SpotifyID: spotifyID, State: StatePending, Last: StatePending}

	for _, s := range f.crawlSteps() {
		o.Last = s.state
		res, err := s.run(ctx, u, opts, sum)
		if err != nil {
			o.State = StateFailed
			o.Reason = s.name
			o.Err = err
			return o
		}
		if res.Skip {
			o.State = StateSkipped
			o.Reason = res.Reason
			return o
		}
	}

	o.State = StateDone
	return o
}

func (f *Fetcher) recordSync(ctx context.Context, runID, entity string, o Outcome) {
	status := data.SyncSuccess
	var msg *string
	switch o.State {
	case StateSkipped:
		status = data.SyncSkipped
		msg = &o.Reason
	case StateFailed:
		status = data.SyncFailed
		s := o.Err.Error()
		msg = &s
	}
	if err := f.db.RecordSync(context.WithoutCancel(ctx), data.SyncLog{
		RunID:        runID,
		SpotifyID:    o.SpotifyID,
		EntityType:   entity,
		Status:       status,
		ErrorMessage: msg,
	}); err != nil {
		log.Warn().Err(err).Str("artist", o.SpotifyID).Msg("could not record sync")
	}
}

func (f *Fetcher) resolveSeed(ctx context.Context, u *unit, _ Options, _ *Summary) (Step, error) {
	seed, err := f.db.GetArtist(ctx, u.spotifyID)
	if errors.Is(err, db.ErrNotFound) {
		return skip("artist not found in db"), nil
	} else if err != nil {
		return proceed, err
	}
	u.seed = seed
	return proceed, nil
}

func (f *Fetcher) expand(ctx context.Context, u *unit, opts Options, _ *Summary) (Step, error) {
	candidates, err := f.expander.Expand(ctx, u.seed.Name, opts.TargetCount, opts.TopExpand, opts.MinScore)
	if err != nil {
		return proceed, err
	}
	if len(candidates) == 0 {
		return skip("no similar artists"), nil
	}
	log.Printf("found %d similar artists for '%s'", len(candidates), u.seed.Name)
	u.candidates = candidates
	return proceed, nil
}

func (f *Fetcher) match(ctx context.Context, u *unit, _ Options, _ *Summary) (Step, error) {
	matches, err := f.resolver.ResolveAll(ctx, u.candidates)
	if err != nil {
		return proceed, err
	}
	if len(matches) == 0 {
		return skip("no catalog matches"), nil
	}
	log.Printf("matched %d of %d similar artists", len(matches), len(u.candidates))
	u.matches = matches
	return proceed, nil
}

func (f *Fetcher) persistArtists(ctx context.Context, u *unit, _ Options, sum *Summary) (Step, error) {
	rows := make([]data.Artist, len(u.matches))
	for i, m := range u.matches {
		rows[i] = mapper.Artist(m.Artist)
	}
	n, err := f.db.UpsertArtists(ctx, rows)
	if err != nil {
		return proceed, err
	}
	sum.ArtistsUpserted += n
	return proceed, nil
}

func (f *Fetcher) linkRelated(ctx context.Context, u *unit, _ Options, sum *Summary) (Step, error) {
	if f.caps.RelatedPivot {
		pairs := make([]db.Pair, len(u.matches))
		for i, m := range u.matches {
			pairs[i] = db.Pair{Left: u.seed.SpotifyID, Right: m.Artist.ID}
		}
		n, err := f.db.ReconcileRelated(ctx, pairs)
		if err != nil {
			return proceed, err
		}
		sum.RelatedLinked += n
	}
	if err := f.db.MarkSimilarScraped(ctx, u.seed.SpotifyID); err != nil {
		return proceed, err
	}
	return proceed, nil
}

// enrichSeed fills in the seed's biography. It never fails the unit.
func (f *Fetcher) enrichSeed(ctx context.Context, u *unit, opts Options, sum *Summary) (Step, error) {
	if f.enricher == nil || opts.SkipEnrichment {
		return proceed, nil
	}
	if u.seed.Description != nil && u.seed.Country != nil {
		return proceed, nil
	}
	cols := f.enricher.Enrich(ctx, u.seed.Name).Columns()
	if len(cols) == 0 {
		return proceed, nil
	}
	if err := f.db.UpdateArtistProfile(ctx, u.seed.SpotifyID, cols); err != nil {
		log.Warn().Err(err).Str("artist", u.seed.SpotifyID).Msg("could not store profile")
		return proceed, nil
	}
	sum.Enriched++
	return proceed, nil
}

func (f *Fetcher) seedTopTracks(ctx context.Context, u *unit, opts Options, sum *Summary) (Step, error) {
	res, err := f.syncTopTracks(ctx, u.seed, opts.Market, opts.ForceRefresh)
	if err != nil {
		return proceed, err
	}
	if res.Skip {
		log.Printf("top tracks: %s", res.Reason)
	}
	sum.SongsUpserted += res.Songs
	sum.TopTracksLinked += res.Linked
	return proceed, nil
}

func (f *Fetcher) seedAlbums(ctx context.Context, u *unit, opts Options, sum *Summary) (Step, error) {
	res, err := f.syncAlbums(ctx, u.seed, albumQuery{
		Market:        opts.Market,
		Limit:         opts.AlbumLimit,
		Pages:         opts.AlbumPages,
		IncludeGroups: opts.IncludeGroups,
	})
	if err != nil {
		return proceed, err
	}
	sum.AlbumsUpserted += res.Albums
	sum.AlbumsLinked += res.Linked
	return proceed, nil
}
