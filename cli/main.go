// this program crawls the artist similarity graph: it expands each seed
// artist's Last.fm neighbourhood, matches the neighbours to Spotify, and
// stores artists, related-artist links, top tracks, and albums.
//
// see db/migrations for the resulting schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amonks/artistgraph/config"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/sigctx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	err := run()
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, context.Canceled):
		fmt.Println("canceled")
	default:
		log.Error().Err(err).Msg("artistgraph failed")
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: artistgraph $cmd
valid $cmd are 'crawl', 'top-tracks', 'albums', 'artists', 'songs', 'genres', 'progress'
for help: artistgraph $cmd -help
`)

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"crawl":      crawl,
	"top-tracks": topTracks,
	"albums":     albums,
	"artists":    artists,
	"songs":      songs,
	"genres":     genres,
	"progress":   progress,
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]
	f, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}
	durations, err := cfg.Durations()
	if err != nil {
		return err
	}

	ctx := sigctx.New()

	db, err := db.Open(ctx, db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return err
	}
	defer db.Close()

	return f(ctx, &app{cfg: cfg, durations: durations, db: db}, args)
}

func setupLogging(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return nil
}
