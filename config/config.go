// Package config loads settings from, in increasing priority: built-in
// defaults, $XDG_CONFIG_HOME/artistgraph/config.toml, ./config.toml, a .env
// file, and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "artistgraph"

type Config struct {
	Database    DatabaseConfig    `koanf:"database" envPrefix:"ARTISTGRAPH_DATABASE_"`
	Spotify     SpotifyConfig     `koanf:"spotify" envPrefix:"SPOTIFY_"`
	Lastfm      LastfmConfig      `koanf:"lastfm" envPrefix:"LASTFM_"`
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz" envPrefix:"MUSICBRAINZ_"`
	Wikipedia   WikipediaConfig   `koanf:"wikipedia" envPrefix:"WIKIPEDIA_"`
	Crawl       CrawlConfig       `koanf:"crawl" envPrefix:"ARTISTGRAPH_CRAWL_"`
	Log         LogConfig         `koanf:"log" envPrefix:"ARTISTGRAPH_LOG_"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" env:"DRIVER"` // "sqlite" or "postgres"
	DSN    string `koanf:"dsn" env:"DSN"`
}

type SpotifyConfig struct {
	ClientID     string `koanf:"client_id" env:"CLIENT_ID"`
	ClientSecret string `koanf:"client_secret" env:"CLIENT_SECRET"`
	APIBase      string `koanf:"api_base" env:"API_BASE"`
	TokenURL     string `koanf:"token_url" env:"TOKEN_URL"`

	// NextRequestFile persists Retry-After deadlines across restarts.
	NextRequestFile string `koanf:"next_request_file" env:"NEXT_REQUEST_FILE"`
}

type LastfmConfig struct {
	APIKey    string `koanf:"api_key" env:"API_KEY"`
	APISecret string `koanf:"api_secret" env:"API_SECRET"`
}

type MusicBrainzConfig struct {
	BaseURL   string `koanf:"base_url" env:"BASE_URL"`
	UserAgent string `koanf:"user_agent" env:"USER_AGENT"`
	CacheDir  string `koanf:"cache_dir" env:"CACHE_DIR"`
	CacheTTL  string `koanf:"cache_ttl" env:"CACHE_TTL"`
}

type WikipediaConfig struct {
	APIURL   string `koanf:"api_url" env:"API_URL"`
	CacheDir string `koanf:"cache_dir" env:"CACHE_DIR"`
	CacheTTL string `koanf:"cache_ttl" env:"CACHE_TTL"`
}

// CrawlConfig holds the courtesy delays and the defaults for batch flags.
// Durations are Go duration strings.
type CrawlConfig struct {
	SpotifyDelay   string `koanf:"spotify_delay" env:"SPOTIFY_DELAY"`
	ArtistDelay    string `koanf:"artist_delay" env:"ARTIST_DELAY"`
	ResolveDelay   string `koanf:"resolve_delay" env:"RESOLVE_DELAY"`
	ExpandDelay    string `koanf:"expand_delay" env:"EXPAND_DELAY"`
	TopTracksDelay string `koanf:"top_tracks_delay" env:"TOP_TRACKS_DELAY"`

	Market      string  `koanf:"market" env:"MARKET"`
	TargetCount int     `koanf:"target_count" env:"TARGET_COUNT"`
	TopExpand   int     `koanf:"top_expand" env:"TOP_EXPAND"`
	MinScore    float64 `koanf:"min_score" env:"MIN_SCORE"`
	AlbumLimit  int     `koanf:"album_limit" env:"ALBUM_LIMIT"`
	AlbumPages  int     `koanf:"album_pages" env:"ALBUM_PAGES"`

	// MinNameSimilarity rejects catalog search hits whose name is too far
	// from the similarity service's. Zero accepts any hit.
	MinNameSimilarity float64 `koanf:"min_name_similarity" env:"MIN_NAME_SIMILARITY"`
}

type LogConfig struct {
	Level string `koanf:"level" env:"LEVEL"`
	JSON  bool   `koanf:"json" env:"JSON"`
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    dataFile("artistgraph.db"),
		},
		Spotify: SpotifyConfig{
			APIBase:         "https://api.spotify.com/v1",
			TokenURL:        "https://accounts.spotify.com/api/token",
			NextRequestFile: dataFile("spotify-next-request"),
		},
		MusicBrainz: MusicBrainzConfig{
			BaseURL:  "https://musicbrainz.org/ws/2",
			CacheDir: filepath.Join(xdg.CacheHome, appName, "musicbrainz"),
			CacheTTL: "720h",
		},
		Wikipedia: WikipediaConfig{
			APIURL:   "https://en.wikipedia.org/w/api.php",
			CacheDir: filepath.Join(xdg.CacheHome, appName, "wikipedia"),
			CacheTTL: "720h",
		},
		Crawl: CrawlConfig{
			SpotifyDelay:   "100ms",
			ArtistDelay:    "1s",
			ResolveDelay:   "100ms",
			ExpandDelay:    "250ms",
			TopTracksDelay: "300ms",
			Market:         "US",
			TargetCount:    50,
			TopExpand:      10,
			MinScore:       0.03,
			AlbumLimit:     50,
			AlbumPages:     10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from every source. Missing files are fine.
func Load() (*Config, error) {
	return load(configPaths(), ".env")
}

func load(paths []string, dotenv string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file '%s': %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading '%s': %w", dotenv, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	cfg.Spotify.APIBase = strings.TrimSuffix(cfg.Spotify.APIBase, "/")
	cfg.MusicBrainz.CacheDir = expandPath(cfg.MusicBrainz.CacheDir)
	cfg.Wikipedia.CacheDir = expandPath(cfg.Wikipedia.CacheDir)
	if cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = expandPath(cfg.Database.DSN)
	}

	if _, err := cfg.Durations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Durations is the parsed form of the duration settings.
type Durations struct {
	SpotifyDelay     time.Duration
	ArtistDelay      time.Duration
	ResolveDelay     time.Duration
	ExpandDelay      time.Duration
	TopTracksDelay   time.Duration
	MusicBrainzCache time.Duration
	WikipediaCache   time.Duration
}

func (cfg *Config) Durations() (Durations, error) {
	var d Durations
	for _, f := range []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"crawl.spotify_delay", cfg.Crawl.SpotifyDelay, &d.SpotifyDelay},
		{"crawl.artist_delay", cfg.Crawl.ArtistDelay, &d.ArtistDelay},
		{"crawl.resolve_delay", cfg.Crawl.ResolveDelay, &d.ResolveDelay},
		{"crawl.expand_delay", cfg.Crawl.ExpandDelay, &d.ExpandDelay},
		{"crawl.top_tracks_delay", cfg.Crawl.TopTracksDelay, &d.TopTracksDelay},
		{"musicbrainz.cache_ttl", cfg.MusicBrainz.CacheTTL, &d.MusicBrainzCache},
		{"wikipedia.cache_ttl", cfg.Wikipedia.CacheTTL, &d.WikipediaCache},
	} {
		if f.value == "" {
			continue
		}
		v, err := time.ParseDuration(f.value)
		if err != nil {
			return d, fmt.Errorf("invalid %s '%s': %w", f.name, f.value, err)
		}
		*f.into = v
	}
	return d, nil
}

func (cfg *Config) HasSpotifyCredentials() bool {
	return cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != ""
}

func (cfg *Config) HasLastfmConfig() bool {
	return cfg.Lastfm.APIKey != ""
}

func configPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}

// dataFile places a file under $XDG_DATA_HOME/artistgraph, falling back to
// the working directory if that can't be created.
func dataFile(name string) string {
	path, err := xdg.DataFile(filepath.Join(appName, name))
	if err != nil {
		return name
	}
	return path
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
