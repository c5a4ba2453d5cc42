package main

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/subcmd"
)

func topTracks(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("top-tracks", "store stored artists' top tracks\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	workList := workListFlags(subcmd.FlagSet)
	var (
		market       = subcmd.String("market", app.crawlOptions().Market, "ISO 3166 market code")
		forceRefresh = subcmd.Bool("force-refresh", false, "replace top tracks for artists that already have some")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	f, err := app.fetcher(need{catalog: true})
	if err != nil {
		return err
	}
	ids, err := f.Select(ctx, workList())
	if err != nil {
		return err
	}
	sum, err := f.RunTopTracks(ctx, ids, fetcher.TopTracksOptions{Market: *market, ForceRefresh: *forceRefresh})
	printSummary(sum)
	return err
}
