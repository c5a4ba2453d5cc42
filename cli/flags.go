package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/artistgraph/fetcher"
)

func stringsFlag(fs *flag.FlagSet, name, usage string) *[]string {
	var values []string
	fs.Func(name, usage, func(s string) error {
		for _, v := range strings.Split(s, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return nil
	})
	return &values
}

func int64sFlag(fs *flag.FlagSet, name, usage string) *[]int64 {
	var values []int64
	fs.Func(name, usage, func(s string) error {
		for _, v := range strings.Split(s, ",") {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id '%s': %w", v, err)
			}
			values = append(values, id)
		}
		return nil
	})
	return &values
}

// workListFlags registers the flags that pick which stored artists a job
// runs over.
func workListFlags(fs *flag.FlagSet) func() fetcher.WorkList {
	var (
		artistIDs  = int64sFlag(fs, "artist-ids", "comma-separated local artist ids")
		spotifyIDs = stringsFlag(fs, "spotify-ids", "comma-separated spotify artist ids")
		unscraped  = fs.Bool("unscraped", false, "only artists whose similar artists haven't been fetched")
		limit      = fs.Int("limit", 0, "at most this many artists; 0 for no limit")
		noShuffle  = fs.Bool("no-shuffle", false, "go in id order instead of shuffling")
	)
	return func() fetcher.WorkList {
		return fetcher.WorkList{
			ArtistIDs:     *artistIDs,
			SpotifyIDs:    *spotifyIDs,
			UnscrapedOnly: *unscraped,
			Limit:         *limit,
			Shuffle:       !*noShuffle,
		}
	}
}
