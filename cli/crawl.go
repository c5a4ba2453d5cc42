package main

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/artistgraph/config"
	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/report"
	"github.com/amonks/artistgraph/setflag"
	"github.com/amonks/artistgraph/subcmd"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func crawl(ctx context.Context, app *app, args []string) error {
	subcmd := subcmd.New("crawl", "expand seed artists into their similar artists, and store those with the seeds' top tracks and albums\nrequires SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, and LASTFM_API_KEY")
	defaults := app.crawlOptions()
	workList := workListFlags(subcmd.FlagSet)
	var (
		market         = subcmd.String("market", defaults.Market, "ISO 3166 market code for top tracks and albums")
		target         = subcmd.Int("target", defaults.TargetCount, "similar artists to collect per seed")
		topExpand      = subcmd.Int("top-expand", defaults.TopExpand, "direct similar artists to expand a second level")
		minScore       = subcmd.Float64("min-score", defaults.MinScore, "drop similar artists scoring below this")
		albumLimit     = subcmd.Int("album-limit", defaults.AlbumLimit, "albums per page, at most 50")
		albumPages     = subcmd.Int("album-pages", defaults.AlbumPages, "album pages per artist")
		groups         = setflag.New(fetcher.AlbumGroups...).Default(defaults.IncludeGroups...)
		forceRefresh   = subcmd.Bool("force-refresh", defaults.ForceRefresh, "replace stored top tracks")
		skipEnrichment = subcmd.Bool("skip-enrichment", false, "don't look seeds up on musicbrainz and wikipedia")
		schedule       = subcmd.String("schedule", "", "cron spec, like '@every 6h'; crawl on this schedule until interrupted")
		reportFile     = subcmd.String("report", "", "append a row of table counts to this TSV file every minute while crawling")
	)
	subcmd.Var(groups, "include-groups", "comma-separated album groups")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	opts := fetcher.Options{
		Market:         *market,
		TargetCount:    *target,
		TopExpand:      *topExpand,
		MinScore:       *minScore,
		AlbumLimit:     *albumLimit,
		AlbumPages:     *albumPages,
		IncludeGroups:  groups.List(),
		ForceRefresh:   *forceRefresh,
		SkipEnrichment: *skipEnrichment,
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	f, err := app.fetcher(need{catalog: true, similar: true})
	if err != nil {
		return err
	}

	once := func(ctx context.Context) error {
		ids, err := f.Select(ctx, workList())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			log.Printf("nothing to crawl")
			return nil
		}
		sum, err := f.RunBatch(ctx, ids, opts)
		printSummary(sum)
		return err
	}

	run := once
	if *schedule != "" {
		run = func(ctx context.Context) error { return onSchedule(ctx, *schedule, once) }
	}
	if *reportFile == "" {
		return run(ctx)
	}
	return withReporter(ctx, app, *reportFile, run)
}

// withReporter runs f while a reporter logs progress alongside it.
func withReporter(ctx context.Context, app *app, filename string, f func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return f(ctx)
	})
	g.Go(func() error {
		return report.Run(ctx, app.db, filename, time.Minute)
	})
	return g.Wait()
}

// crawlOptions are the batch defaults from config. config.Default already
// carries the built-in values, so a zero here was set on purpose.
func (a *app) crawlOptions() fetcher.Options {
	return crawlOptions(a.cfg.Crawl)
}

func crawlOptions(c config.CrawlConfig) fetcher.Options {
	opts := fetcher.DefaultOptions()
	opts.Market = c.Market
	opts.TargetCount = c.TargetCount
	opts.TopExpand = c.TopExpand
	opts.MinScore = c.MinScore
	opts.AlbumLimit = c.AlbumLimit
	opts.AlbumPages = c.AlbumPages
	return opts
}

// onSchedule runs job on the cron schedule spec until ctx is canceled or a
// run returns an error. A run that is still going when the next one is due
// makes that one skip, so crawls never overlap.
func onSchedule(ctx context.Context, spec string, job func(context.Context) error) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	errs := make(chan error, 1)
	if _, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", spec, err)
	}

	c.Start()
	log.Printf("crawling on schedule '%s'", spec)

	var err error
	select {
	case <-ctx.Done():
		err = fmt.Errorf("canceled: %w", ctx.Err())
	case err = <-errs:
	}
	<-c.Stop().Done()
	return err
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
