package domain

import "time"

// Track is a downloaded audio file kept in the media directory.
// SpotifyURI is the catalog identifier the file was resolved from.
type Track struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SpotifyURI string    `json:"spotify_uri"`
	FilePath   string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
