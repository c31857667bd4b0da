package tracks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tunebox/internal/domain"
	"tunebox/internal/repository"
	"tunebox/internal/spotify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service searches the external catalog and manages downloaded audio.
type Service struct {
	catalog  Catalog
	fetcher  AudioFetcher
	tracks   TrackRepositoryInterface
	mediaDir string
}

func NewService(catalog Catalog, fetcher AudioFetcher, tracks TrackRepositoryInterface, mediaDir string) *Service {
	return &Service{
		catalog:  catalog,
		fetcher:  fetcher,
		tracks:   tracks,
		mediaDir: mediaDir,
	}
}

// Search runs the combined track/album/artist catalog search.
func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	foundTracks, err := s.catalog.SearchTracks(ctx, query)
	if err != nil {
		return nil, err
	}
	foundAlbums, err := s.catalog.SearchAlbums(ctx, query)
	if err != nil {
		return nil, err
	}
	foundArtists, err := s.catalog.SearchArtists(ctx, query)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Tracks:  foundTracks,
		Albums:  foundAlbums,
		Artists: foundArtists,
	}, nil
}

// Detail looks up a single catalog entity. Album detail carries the
// album's track list, artist detail carries the artist's top tracks.
func (s *Service) Detail(ctx context.Context, entityType, uri string) (any, error) {
	id := spotify.ID(strings.TrimSpace(uri))
	if id == "" {
		return nil, ErrTrackNotFound
	}

	switch entityType {
	case "track":
		return s.catalog.Track(ctx, id)
	case "album":
		return s.catalog.Album(ctx, id)
	case "artist":
		return s.catalog.Artist(ctx, id)
	default:
		return nil, ErrInvalidEntityType
	}
}

// Download resolves a track, fetches its audio into the media directory
// and records it. Downloading the same track twice returns the stored
// copy.
func (s *Service) Download(ctx context.Context, trackURI string) (*domain.Track, error) {
	trackURI = strings.TrimSpace(trackURI)

	if existing, err := s.tracks.GetBySpotifyURI(ctx, trackURI); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	meta, err := s.catalog.Track(ctx, spotify.ID(trackURI))
	if err != nil {
		if errors.Is(err, spotify.ErrNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, err
	}
	if meta.PreviewURL == "" {
		return nil, ErrNoAudio
	}

	path, err := s.saveAudio(ctx, meta.PreviewURL)
	if err != nil {
		return nil, err
	}

	track := &domain.Track{
		Name:       trackTitle(meta),
		SpotifyURI: trackURI,
		FilePath:   path,
	}
	if err := s.tracks.Create(ctx, track); err != nil {
		// lost a race with a concurrent download of the same track
		if errors.Is(err, repository.ErrDuplicate) {
			if removeErr := os.Remove(path); removeErr != nil {
				log.Printf("media cleanup failed: %v", removeErr)
			}
			return s.tracks.GetBySpotifyURI(ctx, trackURI)
		}
		return nil, err
	}
	return track, nil
}

// MediaPath returns the stored file for a downloaded track.
func (s *Service) MediaPath(ctx context.Context, trackID int64) (string, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTrackNotFound
		}
		return "", err
	}
	return track.FilePath, nil
}

func (s *Service) saveAudio(ctx context.Context, audioURL string) (string, error) {
	if err := os.MkdirAll(s.mediaDir, os.ModePerm); err != nil {
		return "", err
	}

	body, err := s.fetcher.Fetch(ctx, audioURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	path := filepath.Join(s.mediaDir, uuid.NewString()+".mp3")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func trackTitle(t *spotify.Track) string {
	if len(t.Artists) > 0 {
		return fmt.Sprintf("%s-%s", t.Artists[0].Name, t.Name)
	}
	return t.Name
}
