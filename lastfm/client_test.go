package lastfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	got := rank([]rawSimilar{
		{name: "b", match: "0.5"},
		{name: "a", match: "1"},
		{name: "", match: "0.9"},
		{name: "c", match: "0.5", mbid: "mb-c"},
		{name: "d", match: "garbage"},
	})
	assert.Equal(t, []SimilarArtist{
		{Name: "a", Match: 1},
		{Name: "b", Match: 0.5},
		{Name: "c", Match: 0.5, MBID: "mb-c"},
		{Name: "d", Match: 0},
	}, got)
}
