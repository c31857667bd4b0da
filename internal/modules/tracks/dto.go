package tracks

import "tunebox/internal/spotify"

type SearchResult struct {
	Tracks  []spotify.Track  `json:"tracks"`
	Albums  []spotify.Album  `json:"albums"`
	Artists []spotify.Artist `json:"artists"`
}

type DownloadRequest struct {
	TrackURI string `json:"track_uri" binding:"required"`
}

type DownloadResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
