package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Storage    StorageConfig
	S3         S3Config
	Pagination PaginationConfig
	Scheduler  SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	PublicURL   string // absolute base for short links and media; derived from the request when empty
}

type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server was configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

type CacheConfig struct {
	TTL     time.Duration
	LRUSize int
}

type StorageConfig struct {
	Backend        string // local or s3
	MediaRoot      string
	MediaURL       string
	MaxUploadBytes int64
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type PaginationConfig struct {
	PageSize    int
	MaxPageSize int
}

type SchedulerConfig struct {
	CatalogRefreshCron string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			PublicURL:   strings.TrimRight(getEnv("SERVER_PUBLIC_URL", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "foodgram"),
			Password:   getEnv("DB_PASSWORD", "foodgram"),
			DBName:     getEnv("DB_NAME", "foodgram"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "foodgram.db"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Cache: CacheConfig{
			TTL:     parseDuration(getEnv("CACHE_TTL", "6h"), 6*time.Hour),
			LRUSize: parseInt(getEnv("CACHE_LRU_SIZE", "1024"), 1024),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			MediaRoot:      getEnv("MEDIA_ROOT", "./media"),
			MediaURL:       getEnv("MEDIA_URL", "/media"),
			MaxUploadBytes: int64(parseInt(getEnv("MEDIA_MAX_UPLOAD_BYTES", "5242880"), 5<<20)),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "foodgram-media"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Pagination: PaginationConfig{
			PageSize:    parseInt(getEnv("PAGE_SIZE", "6"), 6),
			MaxPageSize: parseInt(getEnv("MAX_PAGE_SIZE", "100"), 100),
		},
		Scheduler: SchedulerConfig{
			CatalogRefreshCron: getEnv("CATALOG_REFRESH_CRON", "0 */6 * * *"),
		},
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}
	if config.Storage.Backend != "local" && config.Storage.Backend != "s3" {
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", config.Storage.Backend)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
