package main

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/subcmd"
)

func artists(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("artists", "import artists from spotify, by id or by search\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	subcmd.SetArg("query", "string", "spotify artist search query")
	var (
		ids   = stringsFlag(subcmd.FlagSet, "ids", "comma-separated spotify artist ids")
		limit = subcmd.Int("page-size", 50, "search results per page, at most 50")
		pages = subcmd.Int("pages", 1, "search result pages")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	f, err := app.fetcher(need{catalog: true})
	if err != nil {
		return err
	}
	sum, err := f.RunArtists(ctx, fetcher.ArtistsQuery{
		IDs:   *ids,
		Query: subcmd.Rest(),
		Limit: *limit,
		Pages: *pages,
	})
	printSummary(sum)
	return err
}

func genres(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("genres", "collect genres from stored artists and link artists to them")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	f, err := app.fetcher(need{})
	if err != nil {
		return err
	}
	sum, err := f.RunGenres(ctx)
	printSummary(sum)
	return err
}
