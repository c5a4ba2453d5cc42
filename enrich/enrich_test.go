package enrich_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amonks/artistgraph/enrich"
	"github.com/amonks/artistgraph/musicbrainz"
	"github.com/stretchr/testify/assert"
)

type profiles struct {
	p   *musicbrainz.Profile
	err error
}

func (f profiles) LookupArtist(ctx context.Context, name string) (*musicbrainz.Profile, error) {
	return f.p, f.err
}

type descriptions struct {
	text string
	err  error
}

func (f descriptions) Extract(ctx context.Context, title string) (string, error) {
	return f.text, f.err
}

func ptr(s string) *string { return &s }

func TestEnrich(t *testing.T) {
	e := enrich.New(
		profiles{p: &musicbrainz.Profile{
			FacebookURL: ptr("https://facebook.com/a"),
			BornIn:      ptr("Baltimore"),
			Gender:      ptr("Female"),
			BornDate:    ptr("1981-06"),
		}},
		descriptions{text: "An artist."},
	)

	cols := e.Enrich(context.Background(), "A").Columns()
	assert.Equal(t, map[string]any{
		"description":  "An artist.",
		"facebook_url": "https://facebook.com/a",
		"born_in":      "Baltimore",
		"gender":       "Female",
		"born_date":    time.Date(1981, 6, 1, 0, 0, 0, 0, time.UTC),
	}, cols)
}

func TestEnrichFailuresAreNull(t *testing.T) {
	e := enrich.New(
		profiles{err: errors.New("503")},
		descriptions{err: errors.New("timeout")},
	)
	res := e.Enrich(context.Background(), "A")
	assert.Nil(t, res.Profile)
	assert.Nil(t, res.Description)
	assert.Empty(t, res.Columns())
}

func TestEnrichWithoutSources(t *testing.T) {
	assert.Empty(t, enrich.New(nil, nil).Enrich(context.Background(), "A").Columns())
}

func TestUnparseableBornDateIsDropped(t *testing.T) {
	e := enrich.New(profiles{p: &musicbrainz.Profile{BornDate: ptr("19xx")}}, nil)
	assert.Empty(t, e.Enrich(context.Background(), "A").Columns())
}
