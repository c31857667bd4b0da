package tracks

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"tunebox/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for the tracks module
type Handler struct {
	service *Service
	baseURL string
}

func NewHandler(service *Service, baseURL string) *Handler {
	return &Handler{service: service, baseURL: baseURL}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	tracksGroup := v1.Group("/tracks")
	{
		tracksGroup.GET("/search", h.Search)
		tracksGroup.GET("/detail", h.Detail)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/tracks/download", h.Download)
	protected.GET("/media/:track_id", h.Media)
}

// Search runs a combined catalog search for tracks, albums and artists.
func (h *Handler) Search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		if errors.Is(err, ErrQueryRequired) {
			response.Error(c, http.StatusBadRequest, "QUERY_REQUIRED", "Query is required")
			return
		}
		response.Error(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "Catalog is unavailable now")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Detail returns detailed catalog data for a track, album or artist.
func (h *Handler) Detail(c *gin.Context) {
	entityType := c.Query("entity_type")
	if entityType == "" {
		response.Error(c, http.StatusBadRequest, "ENTITY_TYPE_REQUIRED", "Entity type is required")
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), entityType, c.Query("uri"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEntityType):
			response.Error(c, http.StatusBadRequest, "INVALID_ENTITY_TYPE", "Entity type must be track, album or artist")
		case errors.Is(err, ErrTrackNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No such catalog entity")
		default:
			response.Error(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "Catalog is unavailable now")
		}
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// Download fetches a track's audio into the media store and returns the
// URL it is served from. Requires authentication.
func (h *Handler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	track, err := h.service.Download(c.Request.Context(), req.TrackURI)
	if err != nil {
		switch {
		case errors.Is(err, ErrTrackNotFound):
			response.Error(c, http.StatusNotFound, "TRACK_NOT_FOUND", "No such track in the catalog")
		case errors.Is(err, ErrNoAudio):
			response.Error(c, http.StatusUnprocessableEntity, "NO_AUDIO", "No audio is available for this track")
		default:
			response.Error(c, http.StatusBadGateway, "DOWNLOAD_FAILED", "Failed to download track")
		}
		return
	}

	response.Success(c, http.StatusOK, DownloadResponse{
		ID:   track.ID,
		Name: track.Name,
		URL:  fmt.Sprintf("%s/api/v1/media/%d", h.baseURL, track.ID),
	})
}

// Media serves a downloaded audio file. Requires authentication.
func (h *Handler) Media(c *gin.Context) {
	trackID, err := strconv.ParseInt(c.Param("track_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	path, err := h.service.MediaPath(c.Request.Context(), trackID)
	if err != nil {
		if errors.Is(err, ErrTrackNotFound) {
			response.Error(c, http.StatusNotFound, "TRACK_NOT_FOUND", "No such downloaded track")
			return
		}
		response.Error(c, http.StatusInternalServerError, "MEDIA_FAILED", "Failed to serve media")
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
