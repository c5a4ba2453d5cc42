package main

import (
	"errors"

	"github.com/amonks/artistgraph/config"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/enrich"
	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/lastfm"
	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/musicbrainz"
	"github.com/amonks/artistgraph/readthrough"
	"github.com/amonks/artistgraph/spotify"
	"github.com/amonks/artistgraph/wikipedia"
)

type app struct {
	cfg       *config.Config
	durations config.Durations
	db        *db.DB
}

// need says which external services a command can't run without.
type need struct {
	catalog bool
	similar bool
}

func (a *app) fetcher(n need) (*fetcher.Fetcher, error) {
	fc := fetcher.Config{
		DB:                a.db,
		Capabilities:      a.db.Capabilities(),
		ArtistDelay:       a.durations.ArtistDelay,
		ResolveDelay:      a.durations.ResolveDelay,
		ExpandDelay:       a.durations.ExpandDelay,
		TopTracksDelay:    a.durations.TopTracksDelay,
		MinNameSimilarity: a.cfg.Crawl.MinNameSimilarity,
	}

	if n.catalog {
		if !a.cfg.HasSpotifyCredentials() {
			return nil, errors.New("must set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
		}
		creds := spotify.NewCredentials(a.cfg.Spotify.ClientID, a.cfg.Spotify.ClientSecret, a.cfg.Spotify.TokenURL)
		spo, err := spotify.New(creds, spotify.Config{
			APIBase:         a.cfg.Spotify.APIBase,
			NextReqFilename: a.cfg.Spotify.NextRequestFile,
			Delay:           a.durations.SpotifyDelay,
		})
		if err != nil {
			return nil, err
		}
		fc.Catalog = spo
	}

	if n.similar {
		if !a.cfg.HasLastfmConfig() {
			return nil, errors.New("must set LASTFM_API_KEY")
		}
		fc.Similar = lastfm.New(a.cfg.Lastfm.APIKey, a.cfg.Lastfm.APISecret)
		fc.Enricher = a.enricher()
	}

	return fetcher.New(fc), nil
}

func (a *app) enricher() *enrich.Enricher {
	mb := musicbrainz.New(musicbrainz.Config{
		BaseURL:   a.cfg.MusicBrainz.BaseURL,
		UserAgent: a.cfg.MusicBrainz.UserAgent,
		Cache:     readthrough.New(a.cfg.MusicBrainz.CacheDir, "musicbrainz", a.durations.MusicBrainzCache),
	})
	wp := wikipedia.New(wikipedia.Config{
		APIURL:  a.cfg.Wikipedia.APIURL,
		Cache:   readthrough.New(a.cfg.Wikipedia.CacheDir, "wikipedia", a.durations.WikipediaCache),
		Limiter: limiter.Every(a.durations.ResolveDelay),
	})
	return enrich.New(mb, wp)
}
