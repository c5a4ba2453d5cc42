// Package musicbrainz looks up artist profiles (social links, birth place,
// gender, country) on MusicBrainz.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/readthrough"
	"github.com/amonks/artistgraph/request"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "artistgraph/1.0 (https://github.com/amonks/artistgraph)"

	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

type Config struct {
	BaseURL   string
	UserAgent string

	// Cache, if set, stores response bodies.
	Cache *readthrough.ReadThrough

	// Limiter defaults to one request per second, which is what
	// MusicBrainz asks of anonymous clients.
	Limiter *limiter.Limiter

	// RetryDelay is the first backoff after a 5xx. It doubles on each
	// retry, up to 30s.
	RetryDelay time.Duration

	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	userAgent  string
	cache      *readthrough.ReadThrough
	limiter    *limiter.Limiter
	retryDelay time.Duration
	http       *http.Client
}

func New(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		cache:      cfg.Cache,
		limiter:    cfg.Limiter,
		retryDelay: cfg.RetryDelay,
		http:       cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.limiter == nil {
		c.limiter = limiter.Every(time.Second)
	}
	if c.retryDelay == 0 {
		c.retryDelay = initialDelay
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// LookupArtist searches for name, takes the best hit, and fetches its
// url relations. It returns nil, nil when nothing matches.
func (c *Client) LookupArtist(ctx context.Context, name string) (*Profile, error) {
	var search searchResponse
	if err := c.getJSON(ctx, "/artist/", url.Values{
		"query": {"artist:" + name},
		"fmt":   {"json"},
		"limit": {"1"},
	}, &search); err != nil {
		return nil, fmt.Errorf("error searching musicbrainz for '%s': %w", name, err)
	}
	if len(search.Artists) == 0 {
		return nil, nil
	}

	mbid := search.Artists[0].ID
	var artist artistResponse
	if err := c.getJSON(ctx, "/artist/"+url.PathEscape(mbid), url.Values{
		"inc": {"url-rels"},
		"fmt": {"json"},
	}, &artist); err != nil {
		return nil, fmt.Errorf("error fetching musicbrainz artist '%s': %w", mbid, err)
	}

	return parseArtist(artist), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, into any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	u := c.baseURL + path + "?" + query.Encode()

	if cached, _, err := c.cache.Get(u); err == nil {
		return cached, nil
	} else if !errors.Is(err, readthrough.ErrMiss) {
		log.Warn().Err(err).Msg("musicbrainz cache")
	}

	resp, err := c.doWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}
	body, _, err := c.cache.Set(u, resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doWithRetry retries network errors and 5xx responses with exponential
// backoff. Other failures are returned as they are.
func (c *Client) doWithRetry(ctx context.Context, u string) (*http.Response, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("canceled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = min(delay*2, maxDelay)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("canceled: %w", ctx.Err())
			}
			lastErr = err
			continue
		}
		if err := request.Error(resp); err != nil {
			resp.Body.Close()
			if request.Retryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
