package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIURL   = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	searchLimit     = 20
	topTracksMarket = "UA"
)

var ErrNotFound = errors.New("spotify: not found")

type ArtistRef struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Track struct {
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	CoverURL   string      `json:"cover_url,omitempty"`
	DurationMS int         `json:"duration_ms"`
	SpotifyURI string      `json:"spotify_uri"`
	PreviewURL string      `json:"-"`
}

type Album struct {
	URI         string      `json:"uri"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	TotalTracks int         `json:"total_tracks"`
	CoverURL    string      `json:"cover_url,omitempty"`
	ReleaseDate string      `json:"release_date,omitempty"`
	Tracks      []Track     `json:"tracks,omitempty"`
}

type Artist struct {
	Name      string   `json:"name"`
	URI       string   `json:"uri"`
	ImageURL  string   `json:"image,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	TopTracks []Track  `json:"top_tracks,omitempty"`
}

// Client talks to the Spotify Web API using the client-credentials flow.
// The bearer token is cached and renewed shortly before it expires.
type Client struct {
	httpClient *http.Client
	apiURL     string
	tokenURL   string
	clientID   string
	secret     string

	mu          sync.Mutex
	bearer      string
	bearerUntil time.Time
}

func NewClient(clientID, secret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     defaultAPIURL,
		tokenURL:   defaultTokenURL,
		clientID:   clientID,
		secret:     secret,
	}
}

// NewClientWithURLs is used by tests to point the client at a stub server.
func NewClientWithURLs(clientID, secret, apiURL, tokenURL string) *Client {
	c := NewClient(clientID, secret)
	c.apiURL = strings.TrimRight(apiURL, "/")
	c.tokenURL = tokenURL
	return c
}

// ID extracts the bare resource id from a spotify URI ("spotify:track:x"),
// an open.spotify.com URL, or returns the input unchanged.
func ID(uriOrID string) string {
	if strings.HasPrefix(uriOrID, "spotify:") {
		parts := strings.Split(uriOrID, ":")
		return parts[len(parts)-1]
	}
	if strings.Contains(uriOrID, "open.spotify.com/") {
		trimmed := strings.SplitN(uriOrID, "?", 2)[0]
		parts := strings.Split(strings.TrimRight(trimmed, "/"), "/")
		return parts[len(parts)-1]
	}
	return uriOrID
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bearer != "" && time.Now().Before(c.bearerUntil) {
		return c.bearer, nil
	}

	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, body)
	if err != nil {
		return "", err
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify: token request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("spotify: empty access token")
	}

	c.bearer = payload.AccessToken
	// renew a minute early to avoid racing the expiry
	c.bearerUntil = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	return c.bearer, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	bearer, err := c.token(ctx)
	if err != nil {
		return err
	}

	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spotify: %s returned status %d: %s", path, resp.StatusCode, string(b))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// wire shapes shared by search and detail responses

type trackItem struct {
	Name       string      `json:"name"`
	URI        string      `json:"uri"`
	DurationMS int         `json:"duration_ms"`
	PreviewURL string      `json:"preview_url"`
	Artists    []ArtistRef `json:"artists"`
	Album      *struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

type albumItem struct {
	URI         string      `json:"uri"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	TotalTracks int         `json:"total_tracks"`
	ReleaseDate string      `json:"release_date"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
	Tracks *struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type artistItem struct {
	Name   string   `json:"name"`
	URI    string   `json:"uri"`
	Genres []string `json:"genres"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (t trackItem) toTrack() Track {
	track := Track{
		Name:       t.Name,
		Artists:    t.Artists,
		DurationMS: t.DurationMS,
		SpotifyURI: t.URI,
		PreviewURL: t.PreviewURL,
	}
	if t.Album != nil && len(t.Album.Images) > 0 {
		track.CoverURL = t.Album.Images[0].URL
	}
	return track
}

func (a albumItem) toAlbum() Album {
	album := Album{
		URI:         a.URI,
		Name:        a.Name,
		Artists:     a.Artists,
		TotalTracks: a.TotalTracks,
		ReleaseDate: a.ReleaseDate,
	}
	if len(a.Images) > 0 {
		album.CoverURL = a.Images[0].URL
	}
	if a.Tracks != nil {
		for _, item := range a.Tracks.Items {
			album.Tracks = append(album.Tracks, item.toTrack())
		}
	}
	return album
}

func (a artistItem) toArtist() Artist {
	artist := Artist{
		Name:   a.Name,
		URI:    a.URI,
		Genres: a.Genres,
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}

func (c *Client) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	var payload struct {
		Tracks struct {
			Items []trackItem `json:"items"`
		} `json:"tracks"`
	}
	if err := c.search(ctx, query, "track", &payload); err != nil {
		return nil, err
	}
	tracks := make([]Track, 0, len(payload.Tracks.Items))
	for _, item := range payload.Tracks.Items {
		tracks = append(tracks, item.toTrack())
	}
	return tracks, nil
}

func (c *Client) SearchAlbums(ctx context.Context, query string) ([]Album, error) {
	var payload struct {
		Albums struct {
			Items []albumItem `json:"items"`
		} `json:"albums"`
	}
	if err := c.search(ctx, query, "album", &payload); err != nil {
		return nil, err
	}
	albums := make([]Album, 0, len(payload.Albums.Items))
	for _, item := range payload.Albums.Items {
		albums = append(albums, item.toAlbum())
	}
	return albums, nil
}

func (c *Client) SearchArtists(ctx context.Context, query string) ([]Artist, error) {
	var payload struct {
		Artists struct {
			Items []artistItem `json:"items"`
		} `json:"artists"`
	}
	if err := c.search(ctx, query, "artist", &payload); err != nil {
		return nil, err
	}
	artists := make([]Artist, 0, len(payload.Artists.Items))
	for _, item := range payload.Artists.Items {
		artists = append(artists, item.toArtist())
	}
	return artists, nil
}

func (c *Client) search(ctx context.Context, query, entityType string, out any) error {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", entityType)
	q.Set("limit", fmt.Sprintf("%d", searchLimit))
	return c.get(ctx, "/search", q, out)
}

func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	var item trackItem
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	track := item.toTrack()
	return &track, nil
}

// Album returns album detail including its track list.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	var item albumItem
	if err := c.get(ctx, "/albums/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	album := item.toAlbum()
	return &album, nil
}

// Artist returns artist detail including its top tracks.
func (c *Client) Artist(ctx context.Context, id string) (*Artist, error) {
	var item artistItem
	if err := c.get(ctx, "/artists/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	artist := item.toArtist()

	var top struct {
		Tracks []trackItem `json:"tracks"`
	}
	q := url.Values{}
	q.Set("market", topTracksMarket)
	if err := c.get(ctx, "/artists/"+url.PathEscape(id)+"/top-tracks", q, &top); err != nil {
		return nil, err
	}
	for _, item := range top.Tracks {
		artist.TopTracks = append(artist.TopTracks, item.toTrack())
	}
	return &artist, nil
}
