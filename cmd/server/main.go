package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/controller"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	"github.com/ikkim/foodgram-backend/internal/router"
	"github.com/ikkim/foodgram-backend/internal/scheduler"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel, logFormat := "info", "json"
	if cfg.Server.Environment == "development" {
		logLevel, logFormat = "debug", "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		Service:     "foodgram-api",
		EnableColor: true,
	})

	logger.Info("Starting Foodgram Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations (also seeds the default tags)
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	appCache := newCache(cfg)
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	mediaStorage, mediaRoot := newStorage(cfg)

	// Initialize repositories
	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	subscriptionRepo := repository.NewSubscriptionRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	ingredientRepo := repository.NewIngredientRepository(conn)
	recipeRepo := repository.NewRecipeRepository(conn)
	favoriteRepo := repository.NewFavoriteRepository(conn)
	cartRepo := repository.NewCartRepository(conn)
	shortLinkRepo := repository.NewShortLinkRepository(conn)

	// Initialize services
	imageService := service.NewImageService(mediaStorage, cfg.Storage.MaxUploadBytes)
	authService := service.NewAuthService(userRepo, appCache, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	userService := service.NewUserService(userRepo, subscriptionRepo, recipeRepo, imageService)
	tagService := service.NewTagService(tagRepo, appCache, cfg.Cache.TTL)
	ingredientService := service.NewIngredientService(ingredientRepo, appCache, cfg.Cache.TTL)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, subscriptionRepo, imageService)
	relationService := service.NewRelationService(recipeRepo, favoriteRepo, cartRepo)
	shoppingListService := service.NewShoppingListService(cartRepo)
	shortLinkService := service.NewShortLinkService(shortLinkRepo, recipeRepo, nil)

	// Initialize controllers
	urls := controller.NewURLBuilder(cfg.Server.PublicURL)
	paginator := controller.NewPaginator(cfg.Pagination.PageSize, cfg.Pagination.MaxPageSize)
	presenter := controller.NewPresenter(urls, imageService)

	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService, authService, paginator, presenter)
	tagController := controller.NewTagController(tagService)
	ingredientController := controller.NewIngredientController(ingredientService)
	recipeController := controller.NewRecipeController(recipeService, relationService, shoppingListService, paginator, presenter)
	shortLinkController := controller.NewShortLinkController(shortLinkService, urls)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, authService)

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		tagController,
		ingredientController,
		recipeController,
		shortLinkController,
		authMiddleware,
		mediaRoot,
		cfg,
	)
	engine := r.Setup()

	// Start catalog cache refresher
	catalogScheduler := scheduler.NewCatalogScheduler(cfg.Scheduler.CatalogRefreshCron, tagService, ingredientService)
	if err := catalogScheduler.Start(); err != nil {
		logger.Fatal("Failed to start catalog scheduler", err)
	}
	defer catalogScheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// newCache uses Redis when configured and an in-process LRU otherwise.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		return cache.NewRedisCache(redis.GetClient())
	}

	lru, err := cache.NewLRUCache(cfg.Cache.LRUSize)
	if err != nil {
		logger.Fatal("Failed to create in-process cache", err)
	}
	logger.Warn("REDIS_HOST not set, using in-process cache; logouts are not shared between instances")
	return lru
}

// newStorage returns the media backend and, for local storage, the directory
// the router should serve.
func newStorage(cfg *config.Config) (storage.Storage, string) {
	if cfg.Storage.Backend == "s3" {
		logger.Info("Using S3 media storage", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
		return storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		), ""
	}

	local, err := storage.NewLocalStorage(cfg.Storage.MediaRoot, cfg.Storage.MediaURL)
	if err != nil {
		logger.Fatal("Failed to initialize local media storage", err)
	}
	if !strings.HasPrefix(cfg.Storage.MediaURL, "/") {
		// media is served by someone else
		return local, ""
	}
	return local, local.Root()
}
