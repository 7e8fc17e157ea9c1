package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/redis"
)

func main() {
	source := flag.String("from", "", "path to a .csv, .json or .xlsx ingredient file")
	demo := flag.Bool("demo", false, "create demo accounts and recipes")
	assumeYes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Parse()

	if *source == "" && !*demo {
		fmt.Fprintln(os.Stderr, "Usage: seed -from <ingredients.csv|.json|.xlsx> [-yes]")
		fmt.Fprintln(os.Stderr, "       seed -demo")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", Service: "foodgram-seed", EnableColor: true})

	if *demo {
		seedDemo(cfg)
		return
	}

	ingredients, err := db.LoadIngredientsFile(*source)
	if err != nil {
		logger.Fatal("Failed to read ingredient file", err, map[string]interface{}{
			"path": *source,
		})
	}
	fmt.Printf("Ingredients to import: %d\n", len(ingredients))

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	// Migrate also makes sure the default tags exist
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	inserted, err := db.SeedIngredients(db.GetDB(), ingredients)
	if err != nil {
		logger.Fatal("Failed to import ingredients", err)
	}
	fmt.Printf("Imported %d new ingredients (%d already present)\n", inserted, int64(len(ingredients))-inserted)

	invalidateCatalogCache(cfg)
}

// invalidateCatalogCache drops the shared catalog cache so running servers
// pick up the import. The in-process fallback cache lives in each server and
// is refreshed by its scheduler instead.
func invalidateCatalogCache(cfg *config.Config) {
	if !cfg.Redis.Enabled() {
		logger.Info("No Redis configured; servers pick up the catalog on their next scheduled refresh")
		return
	}
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Could not reach Redis to invalidate the catalog cache", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer redis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.NewRedisCache(redis.GetClient()).Delete(ctx, cache.KeyTags, cache.KeyIngredients); err != nil {
		logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	logger.Info("Catalog cache invalidated")
}

// seedDemo creates the sample accounts and one recipe per account.
func seedDemo(cfg *config.Config) {
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	var media storage.Storage
	if cfg.Storage.Backend == "s3" {
		media = storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	} else {
		local, err := storage.NewLocalStorage(cfg.Storage.MediaRoot, cfg.Storage.MediaURL)
		if err != nil {
			logger.Fatal("Failed to initialize local media storage", err)
		}
		media = local
	}

	// registration never touches the token cache
	tokens, err := cache.NewLRUCache(16)
	if err != nil {
		logger.Fatal("Failed to create cache", err)
	}

	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	subRepo := repository.NewSubscriptionRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	ingredientRepo := repository.NewIngredientRepository(conn)
	recipeRepo := repository.NewRecipeRepository(conn)
	images := service.NewImageService(media, cfg.Storage.MaxUploadBytes)

	seeder := service.NewDemoSeeder(
		service.NewAuthService(userRepo, tokens, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry),
		service.NewUserService(userRepo, subRepo, recipeRepo, images),
		service.NewRecipeService(
			recipeRepo,
			tagRepo,
			ingredientRepo,
			repository.NewFavoriteRepository(conn),
			repository.NewCartRepository(conn),
			subRepo,
			images,
		),
		userRepo,
		recipeRepo,
		tagRepo,
		ingredientRepo,
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	report, err := seeder.Run(ctx)
	if err != nil {
		logger.Fatal("Demo seed failed", err)
	}
	fmt.Printf("Demo seed: %d ingredients, %d users, %d recipes created\n", report.Ingredients, report.Users, report.Recipes)
	for _, account := range service.DemoAccounts {
		fmt.Printf("  %s / %s\n", account.Email, account.Password)
	}

	if report.Ingredients > 0 {
		invalidateCatalogCache(cfg)
	}
}
