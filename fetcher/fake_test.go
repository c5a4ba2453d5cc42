package fetcher_test

import (
	"context"
	"strings"
	"testing"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/db"
	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/lastfm"
	"github.com/amonks/artistgraph/spotify"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	artists   map[string]spotify.Artist // by name, for search
	tracks    map[string]spotify.Track
	topTracks map[string][]spotify.Track
	albums    map[string][]spotify.Album // by artist id
	features  map[string]spotify.AudioFeatures

	topTracksErr map[string]error
	calls        []string
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		artists:      map[string]spotify.Artist{},
		tracks:       map[string]spotify.Track{},
		topTracks:    map[string][]spotify.Track{},
		albums:       map[string][]spotify.Album{},
		features:     map[string]spotify.AudioFeatures{},
		topTracksErr: map[string]error{},
	}
}

func (c *fakeCatalog) addArtist(id, name string, genres ...string) {
	c.artists[name] = spotify.Artist{ID: id, Name: name, Popularity: 50, Genres: genres}
}

func (c *fakeCatalog) GetSeveralArtists(ctx context.Context, ids []string) ([]spotify.Artist, error) {
	c.calls = append(c.calls, "artists")
	var out []spotify.Artist
	for _, a := range c.artists {
		for _, id := range ids {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (c *fakeCatalog) SearchArtists(ctx context.Context, q string, limit, offset int) (*spotify.Page[spotify.Artist], error) {
	c.calls = append(c.calls, "search artists")
	var items []spotify.Artist
	for name, a := range c.artists {
		if strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
			items = append(items, a)
		}
	}
	if offset > 0 {
		items = nil
	}
	return &spotify.Page[spotify.Artist]{Items: items}, nil
}

func (c *fakeCatalog) SearchArtistByName(ctx context.Context, name string, limit int) ([]spotify.Artist, error) {
	c.calls = append(c.calls, "search "+name)
	if a, ok := c.artists[name]; ok {
		return []spotify.Artist{a}, nil
	}
	return nil, nil
}

func (c *fakeCatalog) SearchTracks(ctx context.Context, q string, limit, offset int) (*spotify.Page[spotify.Track], error) {
	return &spotify.Page[spotify.Track]{}, nil
}

func (c *fakeCatalog) GetSeveralTracks(ctx context.Context, ids []string) ([]spotify.Track, error) {
	var out []spotify.Track
	for _, id := range ids {
		if t, ok := c.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetArtistTopTracks(ctx context.Context, id, market string) ([]spotify.Track, error) {
	c.calls = append(c.calls, "top tracks "+id)
	if err := c.topTracksErr[id]; err != nil {
		return nil, err
	}
	return c.topTracks[id], nil
}

func (c *fakeCatalog) GetArtistAlbums(ctx context.Context, id string, q spotify.AlbumsQuery) (*spotify.Page[spotify.SimpleAlbum], error) {
	c.calls = append(c.calls, "albums "+id)
	all := c.albums[id]
	var items []spotify.SimpleAlbum
	for i := q.Offset; i < len(all) && i < q.Offset+q.Limit; i++ {
		items = append(items, all[i].SimpleAlbum)
	}
	page := &spotify.Page[spotify.SimpleAlbum]{Items: items}
	if q.Offset+q.Limit < len(all) {
		next := "next"
		page.Next = &next
	}
	return page, nil
}

func (c *fakeCatalog) GetSeveralAlbums(ctx context.Context, ids []string) ([]spotify.Album, error) {
	var out []spotify.Album
	for _, albums := range c.albums {
		for _, a := range albums {
			for _, id := range ids {
				if a.ID == id {
					out = append(out, a)
				}
			}
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetAlbumTracks(ctx context.Context, albumID string, limit, offset int) (*spotify.Page[spotify.SimpleTrack], error) {
	return &spotify.Page[spotify.SimpleTrack]{}, nil
}

func (c *fakeCatalog) GetAudioFeatures(ctx context.Context, ids []string) (map[string]spotify.AudioFeatures, error) {
	out := map[string]spotify.AudioFeatures{}
	for _, id := range ids {
		if f, ok := c.features[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}

type fakeSimilar map[string][]lastfm.SimilarArtist

func (s fakeSimilar) GetSimilar(ctx context.Context, name string, limit int) ([]lastfm.SimilarArtist, error) {
	return s[name], nil
}

func track(id, title, artistID string) spotify.Track {
	return spotify.Track{
		SimpleTrack: spotify.SimpleTrack{
			ID:      id,
			Name:    title,
			Artists: []spotify.SimpleArtist{{ID: artistID}},
		},
		Album: spotify.SimpleAlbum{Name: "album of " + title, ReleaseDate: "2020"},
	}
}

func album(id, name string, artistIDs ...string) spotify.Album {
	var credited []spotify.SimpleArtist
	for _, a := range artistIDs {
		credited = append(credited, spotify.SimpleArtist{ID: a})
	}
	return spotify.Album{SimpleAlbum: spotify.SimpleAlbum{
		ID: id, Name: name, AlbumType: "album", ReleaseDate: "2019-03", Artists: credited,
	}}
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(context.Background(), db.Config{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func seed(t *testing.T, d *db.DB, artists ...data.Artist) {
	t.Helper()
	for i := range artists {
		if artists[i].Genres == nil {
			artists[i].Genres = data.EncodeStrings(nil)
		}
	}
	_, err := d.UpsertArtists(context.Background(), artists)
	require.NoError(t, err)
}

func newFetcher(d *db.DB, catalog *fakeCatalog, sim fakeSimilar) *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		DB:           d,
		Catalog:      catalog,
		Similar:      sim,
		Capabilities: d.Capabilities(),
	})
}

func count(t *testing.T, d *db.DB, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := d.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
