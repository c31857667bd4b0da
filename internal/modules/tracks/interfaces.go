package tracks

import (
	"context"
	"io"

	"tunebox/internal/domain"
	"tunebox/internal/spotify"
)

// Catalog is the external music catalog this module searches against.
// Implemented by the spotify client; mocked in tests.
type Catalog interface {
	SearchTracks(ctx context.Context, query string) ([]spotify.Track, error)
	SearchAlbums(ctx context.Context, query string) ([]spotify.Album, error)
	SearchArtists(ctx context.Context, query string) ([]spotify.Artist, error)
	Track(ctx context.Context, id string) (*spotify.Track, error)
	Album(ctx context.Context, id string) (*spotify.Album, error)
	Artist(ctx context.Context, id string) (*spotify.Artist, error)
}

// AudioFetcher retrieves the audio stream behind a resolved URL.
type AudioFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// TrackRepositoryInterface — persistence for downloaded tracks
type TrackRepositoryInterface interface {
	Create(ctx context.Context, t *domain.Track) error
	GetBySpotifyURI(ctx context.Context, uri string) (*domain.Track, error)
	GetByID(ctx context.Context, id int64) (*domain.Track, error)
}
