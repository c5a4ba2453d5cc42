// Package mapper turns catalog payloads into rows.
package mapper

import (
	"database/sql"
	"strings"
	"time"
	"unicode"

	"github.com/amonks/artistgraph/data"
	"github.com/amonks/artistgraph/spotify"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PickImage returns the URL of the widest image, or nil if there are none.
// The first of equally wide images wins.
func PickImage(images []spotify.Image) *string {
	var best *spotify.Image
	for i := range images {
		if best == nil || images[i].Width > best.Width {
			best = &images[i]
		}
	}
	if best == nil {
		return nil
	}
	return nullable(best.URL)
}

// NormalizeReleaseDate pads year- and month-precision dates out to a full
// day: "2020" becomes "2020-01-01" and "2020-05" becomes "2020-05-01". Other
// values pass through, and an empty value is nil.
func NormalizeReleaseDate(date string) *string {
	switch len(date) {
	case 0:
		return nil
	case 4:
		date += "-01-01"
	case 7:
		date += "-01"
	}
	return &date
}

// Artist maps a catalog artist. Profile columns and the scraped flag are
// left zero; upserts never touch them.
func Artist(a spotify.Artist) data.Artist {
	return data.Artist{
		SpotifyID:  a.ID,
		Name:       a.Name,
		ImageURL:   PickImage(a.Images),
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
		Genres:     data.EncodeStrings(a.Genres),
		SpotifyURL: nullable(a.ExternalURLs.Spotify),
	}
}

// Album maps a full catalog album. The release date is kept as reported.
func Album(a spotify.Album) data.Album {
	images := a.Images
	if images == nil {
		images = []spotify.Image{}
	}
	markets := a.AvailableMarkets
	if markets == nil {
		markets = []string{}
	}
	return data.Album{
		SpotifyID:            a.ID,
		Name:                 a.Name,
		AlbumType:            nullable(a.AlbumType),
		ReleaseDate:          nullable(a.ReleaseDate),
		ReleaseDatePrecision: nullable(a.ReleaseDatePrecision),
		TotalTracks:          a.TotalTracks,
		Label:                nullable(a.Label),
		ImageURL:             PickImage(a.Images),
		Images:               data.EncodeJSON(images),
		SpotifyURL:           nullable(a.ExternalURLs.Spotify),
		URI:                  nullable(a.URI),
		AvailableMarkets:     data.EncodeStrings(markets),
	}
}

// Track maps a catalog track owned by the local artist artistID. Audio
// features get neutral defaults; see ApplyAudioFeatures.
func Track(t spotify.Track, artistID int64, genreID *int64, syncedAt time.Time) data.Song {
	var isrc *string
	if t.ExternalIDs.ISRC != "" {
		isrc = nullable(t.ExternalIDs.ISRC)
	}
	return data.Song{
		SpotifyID:     t.ID,
		Title:         t.Name,
		ArtistID:      artistID,
		GenreID:       genreID,
		AlbumName:     nullable(t.Album.Name),
		AlbumImageURL: PickImage(t.Album.Images),
		ReleaseDate:   NormalizeReleaseDate(t.Album.ReleaseDate),
		DurationMS:    t.DurationMS,
		Popularity:    t.Popularity,
		PreviewURL:    t.PreviewURL,
		SpotifyURL:    nullable(t.ExternalURLs.Spotify),
		ISRC:          isrc,
		TimeSignature: 4,
		Explicit:      t.Explicit,
		LastSyncedAt:  sql.NullTime{Time: syncedAt, Valid: true},
	}
}

// PrimaryArtistID is the Spotify id of the track's first credited artist.
func PrimaryArtistID(t spotify.Track) string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].ID
}

// ApplyAudioFeatures copies fetched audio features onto a song.
func ApplyAudioFeatures(s *data.Song, f spotify.AudioFeatures) {
	key, mode := f.Key, f.Mode
	s.Danceability = f.Danceability
	s.Energy = f.Energy
	s.Speechiness = f.Speechiness
	s.Acousticness = f.Acousticness
	s.Instrumentalness = f.Instrumentalness
	s.Liveness = f.Liveness
	s.Valence = f.Valence
	s.Loudness = f.Loudness
	s.Tempo = f.Tempo
	s.Key = &key
	s.Mode = &mode
	if f.TimeSignature != 0 {
		s.TimeSignature = f.TimeSignature
	}
	s.KeySignature = KeySignature(s.Key, s.Mode)
}

var pitchClasses = []string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// KeySignature names a pitch class and mode, like "Eb min". Unknown keys
// are nil.
func KeySignature(key, mode *int64) *string {
	if key == nil || mode == nil || *key < 0 || *key >= int64(len(pitchClasses)) {
		return nil
	}
	suffix := "min"
	if *mode == 1 {
		suffix = "maj"
	}
	sig := pitchClasses[*key] + " " + suffix
	return &sig
}

// Genres turns genre names into rows, one per distinct slug, in first-seen
// order.
func Genres(names []string) []data.Genre {
	seen := map[string]struct{}{}
	var genres []data.Genre
	for _, name := range names {
		slug := Slug(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		genres = append(genres, data.Genre{Name: name, Slug: slug})
	}
	return genres
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lowercases name, strips diacritics, and joins runs of letters and
// digits with dashes: "Drum & Bass" becomes "drum-bass".
func Slug(name string) string {
	plain, _, err := transform.String(stripMarks, name)
	if err != nil {
		plain = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
