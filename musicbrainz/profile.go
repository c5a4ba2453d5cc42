package musicbrainz

import (
	"net/url"
	"strings"
)

// Profile is what MusicBrainz tells us about an artist. Every field is nil
// when unknown.
type Profile struct {
	MBID string

	FacebookURL   *string
	TwitterURL    *string
	InstagramURL  *string
	YoutubeURL    *string
	SoundcloudURL *string
	MyspaceURL    *string
	BandcampURL   *string
	TiktokURL     *string
	DiscogsURL    *string

	// BornDate is the raw life-span begin, at year, month, or day
	// precision. Only set for people.
	BornDate *string
	BornIn   *string
	Gender   *string
	Country  *string
}

type searchResponse struct {
	Artists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"artists"`
}

type area struct {
	Name     string   `json:"name"`
	ISOCodes []string `json:"iso-3166-1-codes"`
}

type artistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Gender    string `json:"gender"`
	Country   string `json:"country"`
	Area      *area  `json:"area"`
	BeginArea *area  `json:"begin-area"`
	LifeSpan  struct {
		Begin string `json:"begin"`
	} `json:"life-span"`
	Relations []struct {
		Type string `json:"type"`
		URL  struct {
			Resource string `json:"resource"`
		} `json:"url"`
	} `json:"relations"`
}

func parseArtist(a artistResponse) *Profile {
	p := &Profile{MBID: a.ID}

	for _, rel := range a.Relations {
		if rel.URL.Resource == "" {
			continue
		}
		if field := p.socialField(rel.URL.Resource); field != nil {
			res := rel.URL.Resource
			*field = &res
		}
	}

	switch {
	case a.BeginArea != nil && a.BeginArea.Name != "":
		p.BornIn = &a.BeginArea.Name
	case a.Area != nil && a.Area.Name != "":
		p.BornIn = &a.Area.Name
	}

	if a.Gender != "" {
		g := strings.ToLower(a.Gender)
		g = strings.ToUpper(g[:1]) + g[1:]
		p.Gender = &g
	}

	switch {
	case a.Country != "":
		p.Country = &a.Country
	case a.Area != nil && len(a.Area.ISOCodes) > 0:
		p.Country = &a.Area.ISOCodes[0]
	}

	if a.Type == "Person" && a.LifeSpan.Begin != "" {
		p.BornDate = &a.LifeSpan.Begin
	}

	return p
}

// socialField picks the profile field a link belongs in, by host. Unknown
// hosts return nil. A later link for the same platform wins.
func (p *Profile) socialField(link string) **string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	is := func(domains ...string) bool {
		for _, d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
		}
		return false
	}

	switch {
	case is("facebook.com"):
		return &p.FacebookURL
	case is("twitter.com", "x.com"):
		return &p.TwitterURL
	case is("instagram.com"):
		return &p.InstagramURL
	case is("youtube.com", "youtu.be"):
		return &p.YoutubeURL
	case is("soundcloud.com"):
		return &p.SoundcloudURL
	case is("myspace.com"):
		return &p.MyspaceURL
	case is("bandcamp.com"):
		return &p.BandcampURL
	case is("tiktok.com"):
		return &p.TiktokURL
	case is("discogs.com"):
		return &p.DiscogsURL
	}
	return nil
}
