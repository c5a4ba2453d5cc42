// Package resolve matches artist names from the similarity service to
// artists in the Spotify catalog.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/similar"
	"github.com/amonks/artistgraph/spotify"
	"github.com/rs/zerolog/log"
)

type Searcher interface {
	SearchArtistByName(ctx context.Context, name string, limit int) ([]spotify.Artist, error)
}

// Match is a catalog artist found for a similarity candidate.
// SourceMatchScore carries over the candidate's similarity score.
type Match struct {
	Artist           spotify.Artist
	SourceMatchScore float64
	Candidate        similar.Artist
}

type Resolver struct {
	searcher Searcher
	pause    *limiter.Limiter

	// MinNameSimilarity rejects search hits whose name is further than
	// this from the candidate's. Zero accepts the first hit whatever it is.
	MinNameSimilarity float64
}

func New(searcher Searcher, pause *limiter.Limiter) *Resolver {
	if pause == nil {
		pause = limiter.Every(0)
	}
	return &Resolver{searcher: searcher, pause: pause}
}

// Resolve looks up a single candidate by exact name. It returns nil, nil
// when the catalog has no such artist.
func (r *Resolver) Resolve(ctx context.Context, candidate similar.Artist) (*Match, error) {
	if err := r.pause.Wait(ctx); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}
	results, err := r.searcher.SearchArtistByName(ctx, candidate.Name, 1)
	if err != nil {
		return nil, fmt.Errorf("error resolving '%s': %w", candidate.Name, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	hit := results[0]
	if r.MinNameSimilarity > 0 {
		if sim := NameSimilarity(candidate.Name, hit.Name); sim < r.MinNameSimilarity {
			log.Debug().
				Str("candidate", candidate.Name).
				Str("hit", hit.Name).
				Float64("similarity", sim).
				Msg("rejecting search hit")
			return nil, nil
		}
	}
	return &Match{Artist: hit, SourceMatchScore: candidate.Score, Candidate: candidate}, nil
}

// ResolveAll resolves candidates in order, dropping the ones the catalog
// doesn't know. A failed search is logged and dropped too, unless it's a
// credentials problem or the context is done.
func (r *Resolver) ResolveAll(ctx context.Context, candidates []similar.Artist) ([]Match, error) {
	var matches []Match
	for _, c := range candidates {
		m, err := r.Resolve(ctx, c)
		if err != nil {
			if errors.Is(err, spotify.ErrCredentials) || ctx.Err() != nil {
				return matches, err
			}
			log.Warn().Err(err).Str("artist", c.Name).Msg("search failed")
			continue
		}
		if m == nil {
			log.Debug().Str("artist", c.Name).Msg("not in catalog")
			continue
		}
		matches = append(matches, *m)
	}
	return matches, nil
}

// NameSimilarity scores two names between 0 and 1 by edit distance after
// folding case and dropping punctuation.
func NameSimilarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(max(len(ra), len(rb)))
}

func normalize(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !space {
				b.WriteRune(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
