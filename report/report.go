// Package report appends periodic crawl progress snapshots to a TSV file.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amonks/artistgraph/db"
)

// Counter is satisfied by *db.DB.
type Counter interface {
	Progress(ctx context.Context) (db.Progress, error)
}

var columns = []string{
	"time",
	"artists", "scraped", "enriched", "described", "related",
	"albums", "album_artists",
	"songs", "top_tracks",
	"genres", "artist_genres",
}

// Run writes a row to filename right away and then every interval, until
// ctx is done. A new file gets a header row first.
func Run(ctx context.Context, counter Counter, filename string, interval time.Duration) error {
	logfile, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening report file '%s': %w", filename, err)
	}
	defer logfile.Close()

	if info, err := logfile.Stat(); err == nil && info.Size() == 0 {
		if err := WriteHeader(logfile); err != nil {
			return err
		}
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		p, err := counter.Progress(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reporting error: %w", err)
		}
		if err := WriteRow(logfile, time.Now(), p); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

func WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintln(w, strings.Join(columns, "\t"))
	return err
}

func WriteRow(w io.Writer, at time.Time, p db.Progress) error {
	_, err := fmt.Fprintf(w,
		"%s\t"+
			"%d\t%d\t%d\t%d\t%d\t"+
			"%d\t%d\t"+
			"%d\t%d\t"+
			"%d\t%d\n",

		at.Format(time.DateTime),
		p.Artists, p.ArtistsScraped, p.ArtistsEnriched, p.ArtistsDescribed, p.Related,
		p.Albums, p.AlbumArtists,
		p.Songs, p.TopTracks,
		p.Genres, p.ArtistGenres,
	)
	if err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
