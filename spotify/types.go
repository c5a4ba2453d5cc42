package spotify

type Image struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

type SimpleArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Images       []Image      `json:"images"`
	Popularity   int64        `json:"popularity"`
	Genres       []string     `json:"genres"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    struct {
		Total int64 `json:"total"`
	} `json:"followers"`
}

type SimpleAlbum struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	AlbumType            string         `json:"album_type"`
	AlbumGroup           string         `json:"album_group"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	TotalTracks          int64          `json:"total_tracks"`
	Images               []Image        `json:"images"`
	Artists              []SimpleArtist `json:"artists"`
	ExternalURLs         ExternalURLs   `json:"external_urls"`
	URI                  string         `json:"uri"`
	AvailableMarkets     []string       `json:"available_markets"`
}

type Album struct {
	SimpleAlbum
	Label      string            `json:"label"`
	Popularity int64             `json:"popularity"`
	Tracks     Page[SimpleTrack] `json:"tracks"`
}

type SimpleTrack struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Artists      []SimpleArtist `json:"artists"`
	DurationMS   int64          `json:"duration_ms"`
	Explicit     bool           `json:"explicit"`
	PreviewURL   *string        `json:"preview_url"`
	DiscNumber   int64          `json:"disc_number"`
	TrackNumber  int64          `json:"track_number"`
	ExternalURLs ExternalURLs   `json:"external_urls"`
}

type Track struct {
	SimpleTrack
	Album       SimpleAlbum `json:"album"`
	Popularity  int64       `json:"popularity"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

type AudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int64   `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int64   `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int64   `json:"time_signature"`
}

// Page is one page of a paged endpoint.
type Page[T any] struct {
	Items    []T     `json:"items"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Total    int     `json:"total"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// HasNext reports whether Spotify says there's another page.
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}
