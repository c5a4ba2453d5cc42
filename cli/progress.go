package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/subcmd"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func progress(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("progress", "report how much of the graph has been crawled")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	p, err := app.db.Progress(ctx)
	if err != nil {
		return err
	}

	printSection("artists", p.Artists, []stat{
		{"similar artists scraped", p.ArtistsScraped},
		{"enriched", p.ArtistsEnriched},
		{"described", p.ArtistsDescribed},
	})
	printSection("related artist links", p.Related, nil)
	printSection("albums", p.Albums, []stat{
		{"artist links", p.AlbumArtists},
	})
	printSection("songs", p.Songs, []stat{
		{"top track entries", p.TopTracks},
	})
	printSection("genres", p.Genres, []stat{
		{"artist links", p.ArtistGenres},
	})

	return nil
}

var humanPrinter = message.NewPrinter(language.English)

type stat struct {
	name  string
	count int64
}

func printSection(name string, known int64, done []stat) {
	humanPrinter.Printf("%s\n", strings.ToUpper(name))
	humanPrinter.Printf("  %d\tknown\n", known)
	for _, s := range done {
		if known == 0 {
			humanPrinter.Printf("  %d\t%s\n", s.count, s.name)
			continue
		}
		humanPrinter.Printf("  %d\t%s (%.2f%%)\n", s.count, s.name, 100.0*float64(s.count)/float64(known))
	}
	humanPrinter.Printf("\n")
}

func printSummary(sum fetcher.Summary) {
	writeSummary(os.Stdout, sum)
}

// writeSummary always lists the unit counts; per-entity counters are only
// listed when nonzero.
func writeSummary(w io.Writer, sum fetcher.Summary) {
	if sum.RunID != "" {
		humanPrinter.Fprintf(w, "run %s\n", sum.RunID)
	}
	humanPrinter.Fprintf(w, "  %d\tprocessed\n", sum.Processed)
	humanPrinter.Fprintf(w, "  %d\tskipped\n", sum.Skipped)
	humanPrinter.Fprintf(w, "  %d\tfailed\n", sum.Failed)
	for _, s := range []stat{
		{"artists upserted", sum.ArtistsUpserted},
		{"related links", sum.RelatedLinked},
		{"artists enriched", sum.Enriched},
		{"songs upserted", sum.SongsUpserted},
		{"top track entries", sum.TopTracksLinked},
		{"albums upserted", sum.AlbumsUpserted},
		{"album links", sum.AlbumsLinked},
		{"genres upserted", sum.GenresUpserted},
		{"genre links", sum.GenresLinked},
	} {
		if s.count != 0 {
			humanPrinter.Fprintf(w, "  %d\t%s\n", s.count, s.name)
		}
	}
}
