// Package lastfm fetches similar artists from Last.fm.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shkh/lastfm-go/lastfm"
)

// errArtistNotFound is Last.fm's "The artist you supplied could not be found".
const errArtistNotFound = 6

// SimilarArtist is one entry of Last.fm's similar-artists list. Match is
// Last.fm's 0..1 similarity score.
type SimilarArtist struct {
	Name  string
	Match float64
	MBID  string
}

// Client wraps the Last.fm API.
type Client struct {
	api *lastfm.Api
}

// New creates a new Last.fm client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret)}
}

// GetSimilar returns up to limit artists similar to name, most similar
// first. An artist Last.fm doesn't know has no similar artists.
func (c *Client) GetSimilar(ctx context.Context, name string, limit int) ([]SimilarArtist, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}

	result, err := c.api.Artist.GetSimilar(lastfm.P{
		"artist":      name,
		"limit":       limit,
		"autocorrect": 1,
	})
	var lfErr *lastfm.LastfmError
	if errors.As(err, &lfErr) && lfErr.Code == errArtistNotFound {
		log.Debug().Str("artist", name).Msg("unknown to last.fm")
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting similar artists for '%s': %w", name, err)
	}

	raw := make([]rawSimilar, len(result.Similars))
	for i, a := range result.Similars {
		raw[i] = rawSimilar{name: a.Name, match: a.Match, mbid: a.Mbid}
	}
	return rank(raw), nil
}

type rawSimilar struct {
	name, match, mbid string
}

// rank parses scores and orders entries by descending score, keeping
// Last.fm's order among ties. Nameless entries are dropped.
func rank(raw []rawSimilar) []SimilarArtist {
	similar := make([]SimilarArtist, 0, len(raw))
	for _, r := range raw {
		if r.name == "" {
			continue
		}
		match, err := strconv.ParseFloat(r.match, 64)
		if err != nil {
			match = 0
		}
		similar = append(similar, SimilarArtist{Name: r.name, Match: match, MBID: r.mbid})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Match > similar[j].Match
	})
	return similar
}
