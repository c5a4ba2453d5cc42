package mapper_test

import (
	"testing"
	"time"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/mapper"
	"github.com/amonks/artistgraph/spotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPickImage(t *testing.T) {
	assert.Equal(t, ptr("b"), mapper.PickImage([]spotify.Image{
		{URL: "a", Width: 300},
		{URL: "b", Width: 640},
	}))
	assert.Equal(t, ptr("a"), mapper.PickImage([]spotify.Image{
		{URL: "a", Width: 64},
		{URL: "c", Width: 64},
	}))
	assert.Nil(t, mapper.PickImage(nil))
	assert.Nil(t, mapper.PickImage([]spotify.Image{}))
}

func TestNormalizeReleaseDate(t *testing.T) {
	assert.Equal(t, ptr("2020-01-01"), mapper.NormalizeReleaseDate("2020"))
	assert.Equal(t, ptr("2020-05-01"), mapper.NormalizeReleaseDate("2020-05"))
	assert.Equal(t, ptr("2020-05-17"), mapper.NormalizeReleaseDate("2020-05-17"))
	assert.Nil(t, mapper.NormalizeReleaseDate(""))
}

func TestArtist(t *testing.T) {
	raw := spotify.Artist{
		ID:         "def456",
		Name:       "Y",
		Images:     []spotify.Image{{URL: "small", Width: 64}, {URL: "big", Width: 640}},
		Popularity: 55,
		Genres:     []string{"shoegaze"},
	}
	raw.Followers.Total = 1234
	raw.ExternalURLs.Spotify = "https://open.spotify.com/artist/def456"

	row := mapper.Artist(raw)
	assert.Equal(t, "def456", row.SpotifyID)
	assert.Equal(t, ptr("big"), row.ImageURL)
	assert.EqualValues(t, 1234, row.Followers)
	assert.Equal(t, []string{"shoegaze"}, row.GenreNames())
	assert.Equal(t, ptr("https://open.spotify.com/artist/def456"), row.SpotifyURL)
	assert.False(t, row.SimilarArtistsScraped)
	assert.Nil(t, row.Description)
}

func TestAlbumKeepsRawReleaseDate(t *testing.T) {
	raw := spotify.Album{Label: ""}
	raw.ID = "al"
	raw.Name = "Album"
	raw.AlbumType = "single"
	raw.ReleaseDate = "1999"
	raw.ReleaseDatePrecision = "year"
	raw.AvailableMarkets = []string{"US", "GB"}

	row := mapper.Album(raw)
	assert.Equal(t, ptr("1999"), row.ReleaseDate)
	assert.Equal(t, ptr("year"), row.ReleaseDatePrecision)
	assert.Equal(t, ptr("single"), row.AlbumType)
	assert.Nil(t, row.Label)
	assert.Nil(t, row.ImageURL)
	assert.JSONEq(t, `["US","GB"]`, string(row.AvailableMarkets))
	assert.JSONEq(t, `[]`, string(row.Images))
}

func TestTrack(t *testing.T) {
	var raw spotify.Track
	raw.ID = "t1"
	raw.Name = "Song"
	raw.DurationMS = 1000
	raw.Explicit = true
	raw.Album.Name = "Album"
	raw.Album.ReleaseDate = "2020-05"
	raw.Album.Images = []spotify.Image{{URL: "cover", Width: 300}}
	raw.ExternalIDs.ISRC = "USABC"
	raw.Artists = []spotify.SimpleArtist{{ID: "a1"}, {ID: "a2"}}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := mapper.Track(raw, 7, ptr(int64(3)), now)
	assert.Equal(t, "Song", row.Title)
	assert.EqualValues(t, 7, row.ArtistID)
	assert.Equal(t, ptr(int64(3)), row.GenreID)
	assert.Equal(t, ptr("2020-05-01"), row.ReleaseDate)
	assert.Equal(t, ptr("cover"), row.AlbumImageURL)
	assert.Equal(t, ptr("USABC"), row.ISRC)
	assert.True(t, row.Explicit)
	assert.Equal(t, now, row.LastSyncedAt.Time)
	assert.Equal(t, "a1", mapper.PrimaryArtistID(raw))

	assert.Zero(t, row.Energy)
	assert.Zero(t, row.Tempo)
	assert.EqualValues(t, 4, row.TimeSignature)
	assert.Nil(t, row.KeySignature)
}

func TestApplyAudioFeatures(t *testing.T) {
	song := data.Song{TimeSignature: 4}
	mapper.ApplyAudioFeatures(&song, spotify.AudioFeatures{Energy: 0.8, Key: 3, Mode: 0, TimeSignature: 3})
	assert.Equal(t, 0.8, song.Energy)
	assert.EqualValues(t, 3, song.TimeSignature)
	assert.Equal(t, ptr("Eb min"), song.KeySignature)
}

func TestKeySignature(t *testing.T) {
	assert.Equal(t, ptr("C maj"), mapper.KeySignature(ptr(int64(0)), ptr(int64(1))))
	assert.Nil(t, mapper.KeySignature(ptr(int64(-1)), ptr(int64(1))))
	assert.Nil(t, mapper.KeySignature(ptr(int64(2)), nil))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "drum-bass", mapper.Slug("Drum & Bass"))
	assert.Equal(t, "musica-popular-brasileira", mapper.Slug("Música Popular Brasileira"))
	assert.Equal(t, "k-pop", mapper.Slug("  k-pop  "))
	assert.Equal(t, "", mapper.Slug("&&"))
}

func TestGenres(t *testing.T) {
	genres := mapper.Genres([]string{"Indie Rock", "indie rock", "pop", ""})
	require.Len(t, genres, 2)
	assert.Equal(t, data.Genre{Name: "Indie Rock", Slug: "indie-rock"}, genres[0])
	assert.Equal(t, "pop", genres[1].Slug)
}
