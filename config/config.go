package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverBolt  = "bolt"
	DriverFile  = "file"
	DriverMongo = "mongo"
	DriverS3    = "s3"
)

type Config struct {
	Port    string
	LogMode string

	StoreDriver     string
	DataDir         string
	BoltPath        string
	MongoURI        string
	DBName          string
	S3Bucket        string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Prefix        string
	S3Endpoint      string
	StoreMaxRetries int

	IssuePeriod time.Duration
	FinePerDay  float64

	JWTSecret string
	AuthEmail string
	AuthPass  string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	issueDays, err := getInt("ISSUE_PERIOD_DAYS", 7)
	if err != nil {
		return nil, err
	}
	retries, err := getInt("STORE_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	fine, err := getFloat("FINE_PER_DAY", 5.0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogMode:         getEnv("LOG_MODE", "dev"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverBolt)),
		DataDir:         dataDir,
		BoltPath:        getEnv("BOLT_PATH", filepath.Join(dataDir, "library.db")),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("MONGODB_DB", "library"),
		S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		S3Region:        getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Prefix:        getEnv("S3_PREFIX", "library/"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		StoreMaxRetries: retries,
		IssuePeriod:     time.Duration(issueDays) * 24 * time.Hour,
		FinePerDay:      fine,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AuthEmail:       getEnv("AUTH_EMAIL", ""),
		AuthPass:        getEnv("AUTH_PASSWORD", ""),
	}, nil
}

// Validate reports the first setting that would make the server misbehave.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverBolt, DriverFile, DriverMongo:
	case DriverS3:
		if c.S3Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required for the s3 store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want bolt, file, mongo or s3)", c.StoreDriver)
	}
	if c.IssuePeriod <= 0 {
		return errors.New("ISSUE_PERIOD_DAYS must be positive")
	}
	if c.FinePerDay < 0 {
		return errors.New("FINE_PER_DAY must not be negative")
	}
	if c.StoreMaxRetries < 1 {
		return errors.New("STORE_MAX_RETRIES must be at least 1")
	}
	if c.AuthEnabled() && (c.AuthEmail == "" || c.AuthPass == "") {
		return errors.New("AUTH_EMAIL and AUTH_PASSWORD are required when JWT_SECRET is set")
	}
	return nil
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
