package main

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/setflag"
	"github.com/amonks/artistgraph/subcmd"
)

func albums(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("albums", "store stored artists' albums\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	defaults := app.crawlOptions()
	workList := workListFlags(subcmd.FlagSet)
	var (
		market = subcmd.String("market", defaults.Market, "ISO 3166 market code")
		limit  = subcmd.Int("page-size", defaults.AlbumLimit, "albums per page, at most 50")
		pages  = subcmd.Int("pages", defaults.AlbumPages, "pages per artist")
		groups = setflag.New(fetcher.AlbumGroups...).Default(defaults.IncludeGroups...)
	)
	subcmd.Var(groups, "include-groups", "comma-separated album groups")
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
	sum, err := f.RunAlbums(ctx, ids, fetcher.AlbumsOptions{
		Market:        *market,
		Limit:         *limit,
		Pages:         *pages,
		IncludeGroups: groups.List(),
	})
	printSummary(sum)
	return err
}
