package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"tunebox/internal/config"
	"tunebox/internal/database"
	"tunebox/internal/middleware"
	"tunebox/internal/modules/accounts"
	"tunebox/internal/modules/tracks"
	"tunebox/internal/pkg/token"
	"tunebox/internal/repository"
	"tunebox/internal/spotify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	trackRepo := repository.NewTrackRepository(db)

	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	accountsService := accounts.NewService(userRepo, sessionRepo, codec)
	accountsHandler := accounts.NewHandler(accountsService)

	catalog := spotify.NewClient(cfg.SpotifyID, cfg.SpotifySecret)
	tracksService := tracks.NewService(catalog, tracks.NewHTTPFetcher(), trackRepo, cfg.MediaDir)
	tracksHandler := tracks.NewHandler(tracksService, cfg.BaseURL)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// credential endpoints sit behind a stricter limiter
		limited := v1.Group("")
		limited.Use(middleware.RateLimitByIP(middleware.CredentialLimit))
		accountsHandler.RegisterPublicRoutes(limited)

		tracksHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.Auth(accountsService))
		{
			accountsHandler.RegisterProtectedRoutes(protected)
			tracksHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
