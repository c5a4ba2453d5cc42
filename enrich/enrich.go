// Package enrich fills in artist profile columns from MusicBrainz and
// Wikipedia. Every lookup is best-effort: a failure is logged and treated as
// if the service knew nothing.
package enrich

import (
	"context"
	"time"

	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/musicbrainz"
	"github.com/rs/zerolog/log"
)

type ProfileSource interface {
	LookupArtist(ctx context.Context, name string) (*musicbrainz.Profile, error)
}

type DescriptionSource interface {
	Extract(ctx context.Context, title string) (string, error)
}

// Enricher combines the two sources. Either may be nil.
type Enricher struct {
	profiles     ProfileSource
	descriptions DescriptionSource
}

func New(profiles ProfileSource, descriptions DescriptionSource) *Enricher {
	return &Enricher{profiles: profiles, descriptions: descriptions}
}

type Result struct {
	Profile     *musicbrainz.Profile
	Description *string
}

func (e *Enricher) Enrich(ctx context.Context, name string) Result {
	var res Result

	if e.descriptions != nil {
		text, err := e.descriptions.Extract(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("artist", name).Msg("wikipedia lookup failed")
		} else if text != "" {
			res.Description = &text
		}
	}

	if e.profiles != nil {
		p, err := e.profiles.LookupArtist(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("artist", name).Msg("musicbrainz lookup failed")
		} else {
			res.Profile = p
		}
	}

	return res
}

// Columns lists the artist columns this result can fill. Unknown values are
// left out so they never overwrite what's stored.
func (r Result) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil && *v != "" {
			cols[col] = *v
		}
	}

	set("description", r.Description)

	if p := r.Profile; p != nil {
		set("facebook_url", p.FacebookURL)
		set("twitter_url", p.TwitterURL)
		set("instagram_url", p.InstagramURL)
		set("youtube_url", p.YoutubeURL)
		set("soundcloud_url", p.SoundcloudURL)
		set("myspace_url", p.MyspaceURL)
		set("bandcamp_url", p.BandcampURL)
		set("tiktok_url", p.TiktokURL)
		set("discogs_url", p.DiscogsURL)
		set("born_in", p.BornIn)
		set("gender", p.Gender)
		set("country", p.Country)

		if p.BornDate != nil {
			if padded := mapper.NormalizeReleaseDate(*p.BornDate); padded != nil {
				if t, err := time.Parse(time.DateOnly, *padded); err == nil {
					cols["born_date"] = t
				}
			}
		}
	}

	return cols
}
