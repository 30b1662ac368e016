package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPlaceholderAssetURL is stored when no asset storage is configured.
const DefaultPlaceholderAssetURL = "https://res.cloudinary.com/demo/image/upload/sample.jpg"

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBUrl       string
	AutoMigrate bool

	// Session
	SecretKey    string
	TokenTTL     time.Duration
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
	CookieDomain string

	// Credential hashing
	BcryptCost      int
	HashConcurrency int

	// Accounts
	AccountRoles        []string
	PlaceholderAssetURL string
	MaxUploadBytes      int64
	CollaboratorTimeout time.Duration

	AllowedOrigins []string

	// Asset storage (S3 compatible)
	S3Provider        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	WasabiEndpoint    string
	ImageMaxDimension int
	ImageQuality      int

	// Redis
	RedisURL      string
	RedisPassword string

	// Rate Limiting Configuration
	RateLimitWindowSeconds     int
	RateLimitLoginThreshold    int
	RateLimitRegisterThreshold int
	RateLimitGlobalThreshold   int
}

func LoadConfig() (*Config, error) {
	// .env is optional; production injects the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBUrl:       getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		SecretKey:    getEnv("SECRET_KEY", ""),
		TokenTTL:     time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "token"),
		CookieMaxAge: time.Duration(getEnvInt("COOKIE_MAX_AGE_DAYS", 5)) * 24 * time.Hour,
		CookieSecure: getEnvBool("COOKIE_SECURE", true),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),

		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		HashConcurrency: getEnvInt("HASH_CONCURRENCY", runtime.NumCPU()),

		AccountRoles:        getEnvList("ACCOUNT_ROLES", []string{"student", "recruiter"}),
		PlaceholderAssetURL: getEnv("PLACEHOLDER_ASSET_URL", DefaultPlaceholderAssetURL),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		CollaboratorTimeout: time.Duration(getEnvInt("COLLABORATOR_TIMEOUT_SECONDS", 5)) * time.Second,

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:8080",
			"http://localhost:5173",
		}),

		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3Region:          getEnv("S3_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		WasabiEndpoint:    getEnv("WASABI_ENDPOINT", ""),
		ImageMaxDimension: getEnvInt("IMAGE_MAX_DIMENSION", 1200),
		ImageQuality:      getEnvInt("IMAGE_QUALITY", 80),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:    getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 5),
		RateLimitRegisterThreshold: getEnvInt("RATE_LIMIT_REGISTER_THRESHOLD", 10),
		RateLimitGlobalThreshold:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if !cfg.StorageConfigured() {
		log.Println("WARNING: S3 storage not configured. Uploaded assets are replaced by the placeholder URL.")
	}

	return cfg, nil
}

// Validate rejects configurations the auth core cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [4,31], got %d", c.BcryptCost))
	}
	if len(c.AccountRoles) == 0 {
		errs = append(errs, errors.New("ACCOUNT_ROLES must list at least one role"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_HOURS must be positive"))
	}
	if c.HashConcurrency < 1 {
		c.HashConcurrency = 1
	}
	return errors.Join(errs...)
}

// StorageConfigured reports whether real asset uploads are possible.
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3Region != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blank items
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
