package main

import (
	"context"
	"fmt"

	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/subcmd"
)

func songs(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("songs", "import tracks from spotify, with audio features where available\ntracks by artists we haven't stored are dropped\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	subcmd.SetArg("query", "string", "spotify track search query")
	var (
		ids    = stringsFlag(subcmd.FlagSet, "ids", "comma-separated spotify track ids")
		album  = subcmd.String("album", "", "spotify album id; import its tracks")
		artist = subcmd.String("artist", "", "spotify artist id; import its top tracks")
		market = subcmd.String("market", app.crawlOptions().Market, "ISO 3166 market code, for -artist")
		limit  = subcmd.Int("page-size", 50, "results per page, at most 50")
		pages  = subcmd.Int("pages", 1, "result pages")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	f, err := app.fetcher(need{catalog: true})
	if err != nil {
		return err
	}
	sum, err := f.RunSongs(ctx, fetcher.SongsQuery{
		IDs:      *ids,
		Query:    subcmd.Rest(),
		AlbumID:  *album,
		ArtistID: *artist,
		Market:   *market,
		Limit:    *limit,
		Pages:    *pages,
	})
	printSummary(sum)
	return err
}
