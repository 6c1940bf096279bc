package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/backend"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/config"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/handlers"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/logger"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/protect"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
	file_repo "github.com/SimpnicServerTeam/scs-profile-manager/internal/repository/file"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository/memory"
	redis_repo "github.com/SimpnicServerTeam/scs-profile-manager/internal/repository/redis"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/router"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/server"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobRepo, closeRepo := newProfileBlobRepository(ctx, cfg)
	defer closeRepo()

	protector, err := protect.NewSecretBoxProtector([]byte(cfg.Profiles.Secret))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create profile protector")
	}

	// Phase one: construct and register providers.
	profileService := service.NewProfileService(blobRepo, protector)
	if len(cfg.Profiles.Suggested) > 0 {
		if err := profileService.RegisterSuggestionProvider(
			service.NewStaticSuggestionProvider("config", cfg.Profiles.Suggested...),
		); err != nil {
			log.Fatal().Err(err).Msg("Failed to register suggestion provider")
		}
	}
	identityProviders := newIdentityProviders(ctx, cfg)

	// Phase two: load the store and ingest suggestions.
	if err := profileService.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize profile service")
	}

	signInService := service.NewSignInService(
		profileService,
		identityProviders,
		backend.NewHTTPBackend(cfg.AuthBackend.Timeout),
		cfg.AuthBackend.Endpoint,
	)

	app := server.New()
	router.SetupProfileRoutes(app, handlers.NewProfileHandler(profileService, signInService), cfg.JWTSecret)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	signInService.Wait()
	if err := profileService.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to save profiles on shutdown")
	}

	log.Info().Msg("Server stopped gracefully.")
}

func newProfileBlobRepository(ctx context.Context, cfg *config.Config) (repository.ProfileBlobRepository, func()) {
	switch cfg.Profiles.Storage {
	case config.StorageRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.RedisSettings.Address).Msg("Failed to connect to redis")
		}
		log.Info().Str("address", cfg.RedisSettings.Address).Msg("Storing profiles in redis")
		return redis_repo.NewRedisProfileBlobRepository(redisClient, cfg.Profiles.RedisKey), func() { _ = redisClient.Close() }
	case config.StorageMemory:
		log.Warn().Msg("Storing profiles in memory, they will not survive a restart")
		return memory.NewMemoryProfileBlobRepository(), func() {}
	default:
		log.Info().Str("dir", cfg.Profiles.Dir).Msg("Storing profiles on disk")
		return file_repo.NewFileProfileBlobRepository(cfg.Profiles.Dir), func() {}
	}
}

func newIdentityProviders(ctx context.Context, cfg *config.Config) *service.IdentityProviderRegistry {
	registry := service.NewIdentityProviderRegistry()

	if cfg.Identity.SigningSecret != "" {
		for _, key := range cfg.Identity.AssertionKeys {
			registry.Register(service.NewJWTAssertionProvider(
				key,
				cfg.Identity.SigningSecret,
				cfg.Identity.Issuer,
				cfg.Identity.Audience,
				cfg.Identity.AssertionTTL,
			))
		}
	}
	if cfg.Identity.Microsoft != nil {
		registry.Register(service.NewOAuthRefreshProvider("live", cfg.Identity.Microsoft))
	}
	if cfg.Identity.OIDCIssuer != "" {
		provider, err := service.NewOIDCProvider(ctx, "xbl", cfg.Identity.OIDCIssuer, cfg.Identity.OIDCClientID)
		if err != nil {
			log.Error().Err(err).Msg("OIDC identity provider disabled")
		} else {
			registry.Register(provider)
		}
	}

	log.Info().Strs("identifierKeys", registry.Keys()).Msg("Identity providers registered")
	return registry
}
