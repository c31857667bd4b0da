package tracks

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"tunebox/internal/database"
	"tunebox/internal/repository"
	"tunebox/internal/spotify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock catalog implementing the Catalog interface
type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SearchTracks(ctx context.Context, query string) ([]spotify.Track, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spotify.Track), args.Error(1)
}

func (m *mockCatalog) SearchAlbums(ctx context.Context, query string) ([]spotify.Album, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spotify.Album), args.Error(1)
}

func (m *mockCatalog) SearchArtists(ctx context.Context, query string) ([]spotify.Artist, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spotify.Artist), args.Error(1)
}

func (m *mockCatalog) Track(ctx context.Context, id string) (*spotify.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Track), args.Error(1)
}

func (m *mockCatalog) Album(ctx context.Context, id string) (*spotify.Album, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Album), args.Error(1)
}

func (m *mockCatalog) Artist(ctx context.Context, id string) (*spotify.Artist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Artist), args.Error(1)
}

// Mock audio fetcher
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func setupTracksService(t *testing.T, catalog Catalog, fetcher AudioFetcher) (*Service, *repository.TrackRepository) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	trackRepo := repository.NewTrackRepository(db)
	return NewService(catalog, fetcher, trackRepo, t.TempDir()), trackRepo
}

func TestService_Search(t *testing.T) {
	catalog := new(mockCatalog)
	svc, _ := setupTracksService(t, catalog, new(mockFetcher))
	ctx := context.Background()

	catalog.On("SearchTracks", mock.Anything, "muse").
		Return([]spotify.Track{{Name: "Hysteria", SpotifyURI: "spotify:track:t1"}}, nil)
	catalog.On("SearchAlbums", mock.Anything, "muse").
		Return([]spotify.Album{{Name: "Absolution", URI: "spotify:album:a1"}}, nil)
	catalog.On("SearchArtists", mock.Anything, "muse").
		Return([]spotify.Artist{{Name: "Muse", URI: "spotify:artist:ar1"}}, nil)

	result, err := svc.Search(ctx, "muse")
	require.NoError(t, err)
	assert.Len(t, result.Tracks, 1)
	assert.Len(t, result.Albums, 1)
	assert.Len(t, result.Artists, 1)

	catalog.AssertExpectations(t)
}

func TestService_Search_EmptyQuery(t *testing.T) {
	svc, _ := setupTracksService(t, new(mockCatalog), new(mockFetcher))

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestService_Detail_InvalidEntityType(t *testing.T) {
	svc, _ := setupTracksService(t, new(mockCatalog), new(mockFetcher))

	_, err := svc.Detail(context.Background(), "playlist", "spotify:playlist:p1")
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}

func TestService_Detail_Album(t *testing.T) {
	catalog := new(mockCatalog)
	svc, _ := setupTracksService(t, catalog, new(mockFetcher))

	catalog.On("Album", mock.Anything, "a1").
		Return(&spotify.Album{Name: "Absolution", Tracks: []spotify.Track{{Name: "Hysteria"}}}, nil)

	detail, err := svc.Detail(context.Background(), "album", "spotify:album:a1")
	require.NoError(t, err)

	album, ok := detail.(*spotify.Album)
	require.True(t, ok)
	assert.Len(t, album.Tracks, 1)
}

func TestService_Download(t *testing.T) {
	catalog := new(mockCatalog)
	fetcher := new(mockFetcher)
	svc, trackRepo := setupTracksService(t, catalog, fetcher)
	ctx := context.Background()

	catalog.On("Track", mock.Anything, "t1").Return(&spotify.Track{
		Name:       "Hysteria",
		Artists:    []spotify.ArtistRef{{Name: "Muse"}},
		SpotifyURI: "spotify:track:t1",
		PreviewURL: "https://cdn.example/audio/t1.mp3",
	}, nil)
	fetcher.On("Fetch", mock.Anything, "https://cdn.example/audio/t1.mp3").
		Return(io.NopCloser(strings.NewReader("fake mp3 bytes")), nil)

	track, err := svc.Download(ctx, "spotify:track:t1")
	require.NoError(t, err)
	assert.Equal(t, "Muse-Hysteria", track.Name)
	assert.Equal(t, "spotify:track:t1", track.SpotifyURI)
	assert.NotZero(t, track.ID)

	// audio landed in the media dir
	data, err := os.ReadFile(track.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "fake mp3 bytes", string(data))

	// second download returns the stored copy without refetching
	again, err := svc.Download(ctx, "spotify:track:t1")
	require.NoError(t, err)
	assert.Equal(t, track.ID, again.ID)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)

	stored, err := trackRepo.GetByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, track.FilePath, stored.FilePath)
}

func TestService_Download_NoPreviewAudio(t *testing.T) {
	catalog := new(mockCatalog)
	svc, _ := setupTracksService(t, catalog, new(mockFetcher))

	catalog.On("Track", mock.Anything, "t2").Return(&spotify.Track{
		Name:       "Obscure B-side",
		SpotifyURI: "spotify:track:t2",
	}, nil)

	_, err := svc.Download(context.Background(), "spotify:track:t2")
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestService_Download_UnknownTrack(t *testing.T) {
	catalog := new(mockCatalog)
	svc, _ := setupTracksService(t, catalog, new(mockFetcher))

	catalog.On("Track", mock.Anything, "missing").Return(nil, spotify.ErrNotFound)

	_, err := svc.Download(context.Background(), "spotify:track:missing")
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestService_MediaPath_Unknown(t *testing.T) {
	svc, _ := setupTracksService(t, new(mockCatalog), new(mockFetcher))

	_, err := svc.MediaPath(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}
