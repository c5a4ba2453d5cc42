package similar_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amonks/artistgraph/lastfm"
	"github.com/amonks/artistgraph/similar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	lists map[string][]lastfm.SimilarArtist
	fail  map[string]error
	calls []string
}

func (f *fakeSource) GetSimilar(ctx context.Context, name string, limit int) ([]lastfm.SimilarArtist, error) {
	f.calls = append(f.calls, name)
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	list := f.lists[strings.ToLower(name)]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func list(entries ...any) []lastfm.SimilarArtist {
	var out []lastfm.SimilarArtist
	for i := 0; i < len(entries); i += 2 {
		out = append(out, lastfm.SimilarArtist{Name: entries[i].(string), Match: entries[i+1].(float64)})
	}
	return out
}

func decayed(match float64) float64 {
	return match * similar.Decay
}

func graph() *fakeSource {
	return &fakeSource{lists: map[string][]lastfm.SimilarArtist{
		"x": list("A", 0.9, "B", 0.8, "C", 0.05),
		"a": list("D", 1.0, "x", 1.0, "b", 0.9, "E", 0.5),
		"b": list("F", 0.7, "G", 0.1),
	}}
}

func TestExpandTwoLevels(t *testing.T) {
	src := graph()
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 10, 2, 0.1)
	require.NoError(t, err)

	assert.Equal(t, []similar.Artist{
		{Name: "A", Score: 0.9, Level: 1, Via: "X"},
		{Name: "B", Score: 0.8, Level: 1, Via: "X"},
		{Name: "D", Score: decayed(1.0), Level: 2, Via: "A"},
		{Name: "F", Score: decayed(0.7), Level: 2, Via: "B"},
		{Name: "E", Score: decayed(0.5), Level: 2, Via: "A"},
	}, got)
	assert.Equal(t, []string{"X", "A", "B"}, src.calls)
}

func TestExpandRespectsTarget(t *testing.T) {
	src := graph()
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 3, 2, 0.1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "D", got[2].Name)
	// target reached inside A's list, so B is never fetched
	assert.Equal(t, []string{"X", "A"}, src.calls)
}

func TestExpandSkipsNestedWhenDirectIsEnough(t *testing.T) {
	src := graph()
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 2, 2, 0.1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"X"}, src.calls)
}

func TestExpandInvariants(t *testing.T) {
	for _, target := range []int{1, 2, 3, 5, 50} {
		for _, minScore := range []float64{0, 0.1, 0.5, 0.9} {
			first, err := similar.New(graph(), nil).Expand(context.Background(), "X", target, 3, minScore)
			require.NoError(t, err)
			second, err := similar.New(graph(), nil).Expand(context.Background(), "X", target, 3, minScore)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.LessOrEqual(t, len(first), target)
			seen := map[string]bool{}
			for _, a := range first {
				assert.GreaterOrEqual(t, a.Score, minScore)
				assert.False(t, seen[strings.ToLower(a.Name)])
				seen[strings.ToLower(a.Name)] = true
				assert.NotEqual(t, "x", strings.ToLower(a.Name))
			}
		}
	}
}

func TestExpandDecayIsNotCompounded(t *testing.T) {
	src := &fakeSource{lists: map[string][]lastfm.SimilarArtist{
		"x": list("A", 0.2),
		"a": list("B", 0.5),
	}}
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 10, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, decayed(0.5), got[0].Score)
	assert.Equal(t, 2, got[0].Level)
}

func TestExpandDedupesCaseInsensitively(t *testing.T) {
	src := &fakeSource{lists: map[string][]lastfm.SimilarArtist{
		"x": list("Beach House", 0.9, "BEACH HOUSE", 0.8),
	}}
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []similar.Artist{{Name: "Beach House", Score: 0.9, Level: 1, Via: "X"}}, got)
}

func TestExpandEmpty(t *testing.T) {
	got, err := similar.New(&fakeSource{}, nil).Expand(context.Background(), "nobody", 10, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpandNestedFailureContinues(t *testing.T) {
	src := graph()
	src.fail = map[string]error{"A": errors.New("timeout")}
	got, err := similar.New(src, nil).Expand(context.Background(), "X", 10, 2, 0.1)
	require.NoError(t, err)
	var names []string
	for _, a := range got {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"A", "B", "F"}, names)
}

func TestExpandDirectFailureFails(t *testing.T) {
	src := graph()
	boom := errors.New("timeout")
	src.fail = map[string]error{"X": boom}
	_, err := similar.New(src, nil).Expand(context.Background(), "X", 10, 2, 0.1)
	assert.ErrorIs(t, err, boom)
}
