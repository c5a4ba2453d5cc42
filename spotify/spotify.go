// Package spotify is a small client for the Spotify Web API's catalog
// endpoints.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/request"
	"github.com/rs/zerolog/log"
)

const DefaultAPIBase = "https://api.spotify.com/v1"

var (
	// ErrSpotify wraps every failed call to the API.
	ErrSpotify = errors.New("spotify error")

	// ErrCredentials means we couldn't get an access token. Nothing else
	// will work until that's fixed.
	ErrCredentials = errors.New("spotify credentials error")
)

// Config configures a Client. Zero values get sensible defaults.
type Config struct {
	APIBase string

	// NextReqFilename persists Retry-After deadlines across restarts.
	NextReqFilename string

	// Delay is the minimum time between requests.
	Delay time.Duration

	HTTPClient *http.Client
}

// New creates a new Spotify client using the given credentials.
func New(creds *Credentials, cfg Config) (*Client, error) {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	lim := limiter.New(cfg.NextReqFilename, cfg.Delay)
	if err := lim.Load(); err != nil {
		return nil, err
	}
	return &Client{
		creds:   creds,
		http:    cfg.HTTPClient,
		apiBase: strings.TrimSuffix(cfg.APIBase, "/"),
		limiter: lim,
	}, nil
}

type Client struct {
	mu sync.Mutex

	creds   *Credentials
	http    *http.Client
	apiBase string
	limiter *limiter.Limiter
}

// get does a GET against the API. It waits out 429s, and on a 401 it
// refreshes the access token and tries once more.
func (spo *Client) get(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	spo.mu.Lock()
	defer spo.mu.Unlock()

	u, err := url.Parse(spo.apiBase + path)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url '%s': %w", ErrSpotify, path, err)
	}
	u.RawQuery = query.Encode()

	refreshed := false
	for {
		if err := spo.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}

		token, err := spo.creds.Token(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: request error: %w", ErrSpotify, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := spo.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: request error: %w", ErrSpotify, err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			wait, err := spo.limiter.SetNextAt(resp.Header.Get("Retry-After"))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSpotify, err)
			}
			log.Printf("429; retrying in %s", wait)
			continue

		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			resp.Body.Close()
			spo.creds.Invalidate()
			refreshed = true
			continue
		}

		if err := request.Error(resp); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: fetch error: %w", ErrSpotify, err)
		}
		return resp.Body, nil
	}
}

func (spo *Client) getJSON(ctx context.Context, path string, query url.Values, into any) error {
	body, err := spo.get(ctx, path, query)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(into); err != nil {
		return fmt.Errorf("%w: decode error for '%s': %w", ErrSpotify, path, err)
	}
	return nil
}
