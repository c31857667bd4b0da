package accounts

import (
	"errors"
	"net/http"

	"tunebox/internal/domain"
	"tunebox/internal/pkg/response"
	"tunebox/internal/pkg/token"
	"tunebox/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for accounts
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	accountsGroup := v1.Group("/accounts")
	{
		accountsGroup.POST("/register", h.Register)
		accountsGroup.POST("/login", h.Login)
		accountsGroup.POST("/refresh", h.Refresh)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	accountsGroup := protected.Group("/accounts")
	{
		accountsGroup.GET("/me", h.Me)
		accountsGroup.POST("/logout", h.Logout)
	}
}

// Register creates an account and opens its first session.
// 201 with {refresh, access}; 409 on duplicate username/email; 400 on
// malformed input.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid registration data", fields)
		return
	}

	user, pair, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "USERNAME_EXISTS", "This username is already taken")
		case errors.Is(err, ErrEmailTaken):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrConflict):
			response.Error(c, http.StatusConflict, "CONFLICT", "Account already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":    UserPublic{ID: user.ID, Username: user.Username},
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

// Login verifies credentials and returns a new token pair.
// 200 on success, 401 on bad password, 404 on unknown username.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, pair, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "No account with this username")
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Password is incorrect")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":    UserPublic{ID: user.ID, Username: user.Username},
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

// Refresh exchanges a refresh token for a fresh access token.
// 200 on success; 403 when the token is invalid, expired or revoked.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	access, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalid):
			response.Error(c, http.StatusForbidden, "TOKEN_INVALID", "Refresh token is invalid")
		case errors.Is(err, token.ErrExpired):
			response.Error(c, http.StatusForbidden, "TOKEN_EXPIRED", "Refresh token has expired")
		case errors.Is(err, ErrSessionRevoked):
			response.Error(c, http.StatusForbidden, "SESSION_REVOKED", "Session has been revoked")
		default:
			response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh token")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access": access})
}

// Me returns the public profile of the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserPublic{ID: user.ID, Username: user.Username},
	})
}

// Logout revokes every session of the authenticated user.
// 200 on success; 403 if there was no live session to revoke.
func (h *Handler) Logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrSessionRevoked) {
			response.Error(c, http.StatusForbidden, "SESSION_REVOKED", "No live session to revoke")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"detail": "logged out"})
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return user
}
