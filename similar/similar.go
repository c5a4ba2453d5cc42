// Package similar expands an artist into a scored set of similar artists,
// following similarity lists up to two levels deep.
package similar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amonks/artistgraph/lastfm"
	"github.com/amonks/artistgraph/limiter"
	"github.com/rs/zerolog/log"
)

const (
	DirectLimit = 50
	NestedLimit = 30
	Decay       = 0.6
)

// Source lists artists similar to a named artist, most similar first.
type Source interface {
	GetSimilar(ctx context.Context, name string, limit int) ([]lastfm.SimilarArtist, error)
}

// Artist is one expanded artist. Level is 1 for the seed's own similar
// artists and 2 for theirs; Via names the artist whose list it came from.
type Artist struct {
	Name  string
	Score float64
	Level int
	Via   string
	MBID  string
}

// Expander walks a Source. Its pause spaces out nested lookups.
type Expander struct {
	source Source
	pause  *limiter.Limiter
}

func New(source Source, pause *limiter.Limiter) *Expander {
	if pause == nil {
		pause = limiter.Every(0)
	}
	return &Expander{source: source, pause: pause}
}

// Expand returns up to target artists similar to seed, best first.
//
// The seed's own list contributes every entry scoring at least minScore.
// If that's fewer than target, the first topExpand entries of the seed's
// list are expanded in turn, with their entries' scores multiplied by Decay,
// until target is reached. Names are compared case-insensitively, and the
// first sighting of a name wins.
func (e *Expander) Expand(ctx context.Context, seed string, target, topExpand int, minScore float64) ([]Artist, error) {
	direct, err := e.source.GetSimilar(ctx, seed, DirectLimit)
	if err != nil {
		return nil, fmt.Errorf("error expanding '%s': %w", seed, err)
	}
	if len(direct) == 0 {
		return nil, nil
	}

	var found []Artist
	index := map[string]struct{}{}
	add := func(a Artist) {
		index[strings.ToLower(a.Name)] = struct{}{}
		found = append(found, a)
	}
	has := func(name string) bool {
		_, ok := index[strings.ToLower(name)]
		return ok
	}

	for _, s := range direct {
		if s.Match >= minScore && !has(s.Name) {
			add(Artist{Name: s.Name, Score: s.Match, Level: 1, Via: seed, MBID: s.MBID})
		}
	}

	seedKey := strings.ToLower(seed)
	visited := map[string]struct{}{seedKey: {}}

expand:
	for _, parent := range direct[:min(topExpand, len(direct))] {
		if len(found) >= target {
			break
		}
		key := strings.ToLower(parent.Name)
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}

		if err := e.pause.Wait(ctx); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}
		nested, err := e.source.GetSimilar(ctx, parent.Name, NestedLimit)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("canceled: %w", err)
			}
			log.Warn().Err(err).Str("artist", parent.Name).Msg("skipping nested expansion")
			continue
		}

		for _, s := range nested {
			if len(found) >= target {
				break expand
			}
			if has(s.Name) || strings.ToLower(s.Name) == seedKey {
				continue
			}
			score := s.Match * Decay
			if score >= minScore {
				add(Artist{Name: s.Name, Score: score, Level: 2, Via: parent.Name, MBID: s.MBID})
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Score > found[j].Score
	})
	if len(found) > target {
		found = found[:target]
	}
	return found, nil
}
