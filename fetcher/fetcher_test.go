package fetcher_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/fetcher"
	"github.com/amonks/artistgraph/request"
	"github.com/amonks/artistgraph/spotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchLinksSimilarArtists(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d, data.Artist{SpotifyID: "abc123", Name: "X"})

	catalog := newCatalog()
	catalog.addArtist("def456", "Y")
	sim := fakeSimilar{"X": {{Name: "Y", Match: 0.5}}}

	sum, err := newFetcher(d, catalog, sim).RunBatch(ctx, []string{"abc123"}, fetcher.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.Skipped)

	y, err := d.GetArtist(ctx, "def456")
	require.NoError(t, err)
	assert.Equal(t, "Y", y.Name)
	assert.Equal(t, int64(2), count(t, d, &data.Artist{}))

	x, err := d.GetArtist(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, x.SimilarArtistsScraped)

	var related []data.ArtistRelated
	require.NoError(t, d.Find(&related).Error)
	assert.Equal(t, []data.ArtistRelated{{ArtistID: x.ID, RelatedArtistID: y.ID}}, related)

	logs, err := d.SyncLogs(ctx, sum.RunID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, data.SyncSuccess, logs[0].Status)
	assert.Equal(t, "abc123", logs[0].SpotifyID)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "a", Name: "A"},
		data.Artist{SpotifyID: "b", Name: "B"},
		data.Artist{SpotifyID: "c", Name: "C"},
	)

	catalog := newCatalog()
	catalog.addArtist("a2", "A2")
	catalog.addArtist("b2", "B2")
	catalog.addArtist("c2", "C2")
	catalog.topTracks["a"] = []spotify.Track{track("ta", "a song", "a")}
	catalog.topTracks["c"] = []spotify.Track{track("tc", "c song", "c")}
	catalog.topTracksErr["b"] = fmt.Errorf("%w: fetch error: %w", spotify.ErrSpotify, &request.StatusError{StatusCode: 503})
	catalog.albums["a"] = []spotify.Album{album("alb-a", "A record", "a")}
	catalog.albums["c"] = []spotify.Album{album("alb-c", "C record", "c", "a")}
	sim := fakeSimilar{
		"A": {{Name: "A2", Match: 0.9}},
		"B": {{Name: "B2", Match: 0.9}},
		"C": {{Name: "C2", Match: 0.9}},
	}

	sum, err := newFetcher(d, catalog, sim).RunBatch(ctx, []string{"a", "b", "c"}, fetcher.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)

	for _, id := range []string{"a", "c"} {
		artist, err := d.GetArtist(ctx, id)
		require.NoError(t, err)
		assert.True(t, artist.SimilarArtistsScraped)
		n, err := d.CountTopTracks(ctx, artist.ID, "US")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, id)
		assert.Equal(t, int64(1), count(t, d, &data.ArtistRelated{}, "artist_id = ?", artist.ID), id)
	}
	assert.Equal(t, int64(2), count(t, d, &data.Album{}))
	// alb-a: a; alb-c: c and a
	assert.Equal(t, int64(3), count(t, d, &data.AlbumArtist{}))

	logs, err := d.SyncLogs(ctx, sum.RunID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, data.SyncFailed, logs[1].Status)
	assert.Contains(t, *logs[1].ErrorMessage, "503")
}

func TestRunBatchSkips(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "lonely", Name: "Lonely"},
		data.Artist{SpotifyID: "obscure", Name: "Obscure"},
	)
	catalog := newCatalog()
	sim := fakeSimilar{"Obscure": {{Name: "Nobody Knows", Match: 1}}}

	sum, err := newFetcher(d, catalog, sim).RunBatch(ctx, []string{"missing", "lonely", "obscure"}, fetcher.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Processed)
	assert.Equal(t, 3, sum.Skipped)
	assert.Equal(t, 0, sum.Failed)

	logs, err := d.SyncLogs(ctx, sum.RunID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, data.SyncSkipped, l.Status)
	}
	assert.Equal(t, "artist not found in db", *logs[0].ErrorMessage)
	assert.Equal(t, "no similar artists", *logs[1].ErrorMessage)
	assert.Equal(t, "no catalog matches", *logs[2].ErrorMessage)

	obscure, err := d.GetArtist(ctx, "obscure")
	require.NoError(t, err)
	assert.False(t, obscure.SimilarArtistsScraped)
}

func TestRunBatchStopsOnCredentials(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "a", Name: "A"},
		data.Artist{SpotifyID: "b", Name: "B"},
		data.Artist{SpotifyID: "c", Name: "C"},
	)
	catalog := newCatalog()
	catalog.addArtist("z", "Z")
	catalog.topTracksErr["b"] = fmt.Errorf("%w: token expired", spotify.ErrCredentials)
	sim := fakeSimilar{"A": {{Name: "Z", Match: 1}}, "B": {{Name: "Z", Match: 1}}, "C": {{Name: "Z", Match: 1}}}

	sum, err := newFetcher(d, catalog, sim).RunBatch(ctx, []string{"a", "b", "c"}, fetcher.DefaultOptions())
	assert.ErrorIs(t, err, spotify.ErrCredentials)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Failed)
	assert.NotContains(t, catalog.calls, "top tracks c")
}

func TestRunBatchRejectsBadOptions(t *testing.T) {
	d := openDB(t)
	opts := fetcher.DefaultOptions()
	opts.Market = "usa"
	_, err := newFetcher(d, newCatalog(), fakeSimilar{}).RunBatch(context.Background(), []string{"a"}, opts)
	assert.ErrorContains(t, err, "invalid options")
}

func TestRunTopTracksForcedRefresh(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d, data.Artist{SpotifyID: "a", Name: "A"})
	artist, err := d.GetArtist(ctx, "a")
	require.NoError(t, err)

	var old []data.Song
	var oldIDs []string
	for i := range 10 {
		id := fmt.Sprintf("old%d", i)
		old = append(old, data.Song{SpotifyID: id, Title: id, ArtistID: artist.ID, TimeSignature: 4})
		oldIDs = append(oldIDs, id)
	}
	_, err = d.UpsertSongs(ctx, old, false)
	require.NoError(t, err)
	_, err = d.ReplaceTopTracks(ctx, artist.ID, "US", oldIDs, true)
	require.NoError(t, err)

	catalog := newCatalog()
	var fresh []spotify.Track
	for i := range 5 {
		fresh = append(fresh, track(fmt.Sprintf("new%d", i), "new", "a"))
	}
	catalog.topTracks["a"] = fresh
	f := newFetcher(d, catalog, fakeSimilar{})

	sum, err := f.RunTopTracks(ctx, []string{"a"}, fetcher.TopTracksOptions{Market: "US"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Empty(t, catalog.calls)

	sum, err = f.RunTopTracks(ctx, []string{"a"}, fetcher.TopTracksOptions{Market: "US", ForceRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)

	var rows []data.ArtistTopTrack
	require.NoError(t, d.Where("artist_id = ? and market = ?", artist.ID, "US").Order("rank").Find(&rows).Error)
	require.Len(t, rows, 5)
	ids, err := d.SongIDs(ctx, []string{"new0", "new1", "new2", "new3", "new4"})
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, int64(i+1), row.Rank)
		assert.Equal(t, ids[fmt.Sprintf("new%d", i)], row.SongID)
	}

	var s data.Song
	require.NoError(t, d.Where("spotify_id = ?", "new0").Take(&s).Error)
	assert.Equal(t, "2020-01-01", *s.ReleaseDate)
	assert.Equal(t, int64(4), s.TimeSignature)
}

func TestTopTracksOwnership(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "a", Name: "A"},
		data.Artist{SpotifyID: "feat", Name: "Feat"},
	)
	catalog := newCatalog()
	catalog.topTracks["a"] = []spotify.Track{
		track("t1", "own", "a"),
		track("t2", "guest", "feat"),
		track("t3", "stranger", "unknown"),
	}

	_, err := newFetcher(d, catalog, fakeSimilar{}).RunTopTracks(ctx, []string{"a"}, fetcher.TopTracksOptions{Market: "US"})
	require.NoError(t, err)

	a, _ := d.GetArtist(ctx, "a")
	feat, _ := d.GetArtist(ctx, "feat")
	owners := map[string]int64{}
	var songs []data.Song
	require.NoError(t, d.Find(&songs).Error)
	for _, s := range songs {
		owners[s.SpotifyID] = s.ArtistID
	}
	assert.Equal(t, map[string]int64{"t1": a.ID, "t2": feat.ID, "t3": a.ID}, owners)
}

func TestRunAlbumsPaginates(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d, data.Artist{SpotifyID: "a", Name: "A"})
	catalog := newCatalog()
	for i := range 7 {
		catalog.albums["a"] = append(catalog.albums["a"], album(fmt.Sprintf("alb%d", i), "record", "a"))
	}

	sum, err := newFetcher(d, catalog, fakeSimilar{}).RunAlbums(ctx, []string{"a"}, fetcher.AlbumsOptions{
		Market: "US", Limit: 3, Pages: 2, IncludeGroups: []string{"album"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, int64(6), count(t, d, &data.Album{}))
	assert.Equal(t, int64(6), count(t, d, &data.AlbumArtist{}))

	var a data.Album
	require.NoError(t, d.Where("spotify_id = ?", "alb0").Take(&a).Error)
	assert.Equal(t, "2019-03", *a.ReleaseDate)

	_, err = newFetcher(d, catalog, fakeSimilar{}).RunAlbums(ctx, []string{"a"}, fetcher.AlbumsOptions{
		Market: "US", Limit: 3, Pages: 2, IncludeGroups: []string{"bootleg"},
	})
	assert.Error(t, err)
}

func TestRunSongs(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d, data.Artist{SpotifyID: "a", Name: "A", Genres: data.EncodeStrings([]string{"shoegaze"})})
	catalog := newCatalog()
	catalog.tracks["t1"] = track("t1", "known", "a")
	catalog.tracks["t2"] = track("t2", "unknown", "nobody")
	catalog.features["t1"] = spotify.AudioFeatures{ID: "t1", Key: 3, Mode: 0, Tempo: 120, TimeSignature: 3}

	f := newFetcher(d, catalog, fakeSimilar{})
	_, err := f.RunGenres(ctx)
	require.NoError(t, err)

	sum, err := f.RunSongs(ctx, fetcher.SongsQuery{IDs: []string{"t1", "t2", "t1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, d, &data.Song{}))
	assert.Positive(t, sum.SongsUpserted)

	var s data.Song
	require.NoError(t, d.Where("spotify_id = ?", "t1").Take(&s).Error)
	assert.Equal(t, "Eb min", *s.KeySignature)
	assert.Equal(t, 120.0, s.Tempo)
	assert.Equal(t, int64(3), s.TimeSignature)
	require.NotNil(t, s.GenreID)

	var g data.Genre
	require.NoError(t, d.Take(&g, *s.GenreID).Error)
	assert.Equal(t, "shoegaze", g.Slug)

	_, err = f.RunSongs(ctx, fetcher.SongsQuery{})
	assert.Error(t, err)
}

func TestRunGenres(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "a", Name: "A", Genres: data.EncodeStrings([]string{"Indie Rock", "shoegaze"})},
		data.Artist{SpotifyID: "b", Name: "B", Genres: data.EncodeStrings([]string{"indie rock"})},
		data.Artist{SpotifyID: "c", Name: "C"},
	)
	f := newFetcher(d, newCatalog(), fakeSimilar{})

	sum, err := f.RunGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.GenresLinked)
	assert.Equal(t, int64(2), count(t, d, &data.Genre{}))

	sum, err = f.RunGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.GenresLinked)
	assert.Equal(t, int64(3), count(t, d, &data.ArtistGenre{}))
}

func TestRunArtists(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	catalog := newCatalog()
	catalog.addArtist("1", "Beach House", "dream pop")
	catalog.addArtist("2", "Beach Fossils")
	catalog.addArtist("3", "Low")

	f := newFetcher(d, catalog, fakeSimilar{})
	_, err := f.RunArtists(ctx, fetcher.ArtistsQuery{IDs: []string{"3"}})
	require.NoError(t, err)
	_, err = f.RunArtists(ctx, fetcher.ArtistsQuery{Query: "beach", Limit: 50, Pages: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count(t, d, &data.Artist{}))

	bh, err := d.GetArtist(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dream pop"}, bh.GenreNames())

	_, err = f.RunArtists(ctx, fetcher.ArtistsQuery{Query: "beach", Limit: 51, Pages: 1})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	d := openDB(t)
	seed(t, d,
		data.Artist{SpotifyID: "a", Name: "A"},
		data.Artist{SpotifyID: "b", Name: "B", SimilarArtistsScraped: true},
		data.Artist{SpotifyID: "c", Name: "C"},
	)
	require.NoError(t, d.MarkSimilarScraped(ctx, "b"))
	f := newFetcher(d, newCatalog(), fakeSimilar{})

	all, err := f.Select(ctx, fetcher.WorkList{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	unscraped, err := f.Select(ctx, fetcher.WorkList{UnscrapedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, unscraped)

	a, _ := d.GetArtist(ctx, "a")
	explicit, err := f.Select(ctx, fetcher.WorkList{ArtistIDs: []int64{a.ID}, SpotifyIDs: []string{"c", "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, explicit)

	shuffled, err := f.Select(ctx, fetcher.WorkList{Shuffle: true, Limit: 2, Rand: rand.New(rand.NewPCG(1, 2))})
	require.NoError(t, err)
	assert.Len(t, shuffled, 2)
	assert.Subset(t, []string{"a", "b", "c"}, shuffled)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, fetcher.DefaultOptions().Validate())

	for name, mutate := range map[string]func(*fetcher.Options){
		"market":      func(o *fetcher.Options) { o.Market = "us" },
		"album limit": func(o *fetcher.Options) { o.AlbumLimit = 51 },
		"album pages": func(o *fetcher.Options) { o.AlbumPages = 0 },
		"target":      func(o *fetcher.Options) { o.TargetCount = 0 },
		"min score":   func(o *fetcher.Options) { o.MinScore = 1.5 },
		"groups":      func(o *fetcher.Options) { o.IncludeGroups = []string{"album", "mixtape"} },
	} {
		opts := fetcher.DefaultOptions()
		mutate(&opts)
		assert.Error(t, opts.Validate(), name)
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "RECONCILING", fetcher.StateReconciling.String())
	assert.True(t, fetcher.StateSkipped.Terminal())
	assert.False(t, fetcher.StateMatching.Terminal())
}
