package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/amonks/artistgraph/chunk"
)

// Per-call limits of the bulk endpoints.
const (
	SeveralArtistsLimit = 50
	SeveralTracksLimit  = 50
	SeveralAlbumsLimit  = 20
	AudioFeaturesLimit  = 100
)

func (spo *Client) GetArtist(ctx context.Context, id string) (*Artist, error) {
	var artist Artist
	if err := spo.getJSON(ctx, "/artists/"+url.PathEscape(id), nil, &artist); err != nil {
		return nil, fmt.Errorf("error getting artist '%s': %w", id, err)
	}
	return &artist, nil
}

// GetSeveralArtists fetches artists by id, SeveralArtistsLimit at a time.
// Unknown ids are left out of the result.
func (spo *Client) GetSeveralArtists(ctx context.Context, ids []string) ([]Artist, error) {
	var artists []Artist
	for _, c := range chunk.Split(chunk.Unique(ids), SeveralArtistsLimit) {
		var results struct {
			Artists []*Artist `json:"artists"`
		}
		query := url.Values{"ids": {strings.Join(c, ",")}}
		if err := spo.getJSON(ctx, "/artists", query, &results); err != nil {
			return nil, fmt.Errorf("error getting %d artists: %w", len(c), err)
		}
		for _, a := range results.Artists {
			if a != nil {
				artists = append(artists, *a)
			}
		}
	}
	return artists, nil
}

// SearchArtists runs a raw artist search query.
func (spo *Client) SearchArtists(ctx context.Context, q string, limit, offset int) (*Page[Artist], error) {
	var results struct {
		Artists Page[Artist] `json:"artists"`
	}
	if err := spo.getJSON(ctx, "/search", searchQuery(q, "artist", limit, offset), &results); err != nil {
		return nil, fmt.Errorf("error searching artists for '%s': %w", q, err)
	}
	return &results.Artists, nil
}

// SearchArtistByName does an exact-name artist search.
func (spo *Client) SearchArtistByName(ctx context.Context, name string, limit int) ([]Artist, error) {
	q := fmt.Sprintf(`artist:"%s"`, strings.ReplaceAll(name, `"`, ""))
	page, err := spo.SearchArtists(ctx, q, limit, 0)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// SearchTracks runs a raw track search query.
func (spo *Client) SearchTracks(ctx context.Context, q string, limit, offset int) (*Page[Track], error) {
	var results struct {
		Tracks Page[Track] `json:"tracks"`
	}
	if err := spo.getJSON(ctx, "/search", searchQuery(q, "track", limit, offset), &results); err != nil {
		return nil, fmt.Errorf("error searching tracks for '%s': %w", q, err)
	}
	return &results.Tracks, nil
}

func searchQuery(q, typ string, limit, offset int) url.Values {
	return url.Values{
		"q":      {q},
		"type":   {typ},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}

// GetSeveralTracks fetches tracks by id, SeveralTracksLimit at a time.
func (spo *Client) GetSeveralTracks(ctx context.Context, ids []string) ([]Track, error) {
	var tracks []Track
	for _, c := range chunk.Split(chunk.Unique(ids), SeveralTracksLimit) {
		var results struct {
			Tracks []*Track `json:"tracks"`
		}
		query := url.Values{"ids": {strings.Join(c, ",")}}
		if err := spo.getJSON(ctx, "/tracks", query, &results); err != nil {
			return nil, fmt.Errorf("error getting %d tracks: %w", len(c), err)
		}
		for _, t := range results.Tracks {
			if t != nil {
				tracks = append(tracks, *t)
			}
		}
	}
	return tracks, nil
}

// GetArtistTopTracks returns up to 10 of the artist's top tracks in the
// market, in Spotify's order.
func (spo *Client) GetArtistTopTracks(ctx context.Context, id, market string) ([]Track, error) {
	var results struct {
		Tracks []Track `json:"tracks"`
	}
	query := url.Values{"market": {market}}
	if err := spo.getJSON(ctx, "/artists/"+url.PathEscape(id)+"/top-tracks", query, &results); err != nil {
		return nil, fmt.Errorf("error getting top tracks for artist '%s' in '%s': %w", id, market, err)
	}
	return results.Tracks, nil
}

// AlbumsQuery selects a page of an artist's albums.
type AlbumsQuery struct {
	Limit         int
	Offset        int
	Market        string
	IncludeGroups []string
}

// GetArtistAlbums fetches one page of the artist's albums.
func (spo *Client) GetArtistAlbums(ctx context.Context, id string, q AlbumsQuery) (*Page[SimpleAlbum], error) {
	query := url.Values{
		"limit":  {strconv.Itoa(q.Limit)},
		"offset": {strconv.Itoa(q.Offset)},
	}
	if q.Market != "" {
		query.Set("market", q.Market)
	}
	if len(q.IncludeGroups) > 0 {
		query.Set("include_groups", strings.Join(q.IncludeGroups, ","))
	}
	var page Page[SimpleAlbum]
	if err := spo.getJSON(ctx, "/artists/"+url.PathEscape(id)+"/albums", query, &page); err != nil {
		return nil, fmt.Errorf("error getting albums for artist '%s' at offset %d: %w", id, q.Offset, err)
	}
	return &page, nil
}

// GetSeveralAlbums fetches full albums by id, SeveralAlbumsLimit at a time.
func (spo *Client) GetSeveralAlbums(ctx context.Context, ids []string) ([]Album, error) {
	var albums []Album
	for _, c := range chunk.Split(chunk.Unique(ids), SeveralAlbumsLimit) {
		var results struct {
			Albums []*Album `json:"albums"`
		}
		query := url.Values{"ids": {strings.Join(c, ",")}}
		if err := spo.getJSON(ctx, "/albums", query, &results); err != nil {
			return nil, fmt.Errorf("error getting %d albums: %w", len(c), err)
		}
		for _, a := range results.Albums {
			if a != nil {
				albums = append(albums, *a)
			}
		}
	}
	return albums, nil
}

// GetAlbumTracks fetches one page of an album's tracks.
func (spo *Client) GetAlbumTracks(ctx context.Context, albumID string, limit, offset int) (*Page[SimpleTrack], error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var page Page[SimpleTrack]
	if err := spo.getJSON(ctx, "/albums/"+url.PathEscape(albumID)+"/tracks", query, &page); err != nil {
		return nil, fmt.Errorf("error getting tracks for album '%s': %w", albumID, err)
	}
	return &page, nil
}
