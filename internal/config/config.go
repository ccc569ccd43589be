package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	DBType           string
	DBDSN            string
	SQLitePath       string
	FileObservations string
	FileUsers        string

	AuthBackend    string
	AuthServiceURL string
	JWTSecret      string
	SessionTTL     time.Duration
	SessionBackend string
	RedisAddr      string
	RedisPassword  string

	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthUserInfoURL  string
	CookieSecret      string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CORSOrigins []string
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the configuration once per process. A .env file in the
// working directory is applied first; real environment variables win.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	c := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8088"),

		DBType:           getEnv("STORAGE_BACKEND", "file"),
		DBDSN:            getEnv("POSTGRES_DSN", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "data/explorer.db"),
		FileObservations: getEnv("OBSERVATIONS_FILE", "data/observations.json"),
		FileUsers:        getEnv("USERS_FILE", "data/users.json"),

		AuthBackend:    getEnv("AUTH_BACKEND", "local"),
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthRedirectURL:  getEnv("OAUTH_REDIRECT_URL", "http://localhost:8088/auth/federated/callback"),
		OAuthAuthURL:      getEnv("OAUTH_AUTH_URL", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthUserInfoURL:  getEnv("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo"),
		CookieSecret:      getEnv("COOKIE_SECRET", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "observations"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
	}
	if c.Env == "development" && c.JWTSecret == "" {
		c.JWTSecret = "dev-only-secret"
	}
	if c.Env == "development" && c.CookieSecret == "" {
		c.CookieSecret = "dev-only-cookie-secret"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.DBType {
	case "memory":
	case "file":
		if c.FileObservations == "" || c.FileUsers == "" {
			return errors.New("File storage requires OBSERVATIONS_FILE and USERS_FILE to be set")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: memory, file, sqlite, postgres")
	}
	switch c.AuthBackend {
	case "local":
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_BACKEND=local")
		}
	case "remote":
		if c.AuthServiceURL == "" {
			return errors.New("AUTH_SERVICE_URL is required when AUTH_BACKEND=remote")
		}
	default:
		return errors.New("AUTH_BACKEND must be one of: local, remote")
	}
	if c.SessionBackend != "memory" && c.SessionBackend != "redis" {
		return errors.New("SESSION_BACKEND must be one of: memory, redis")
	}
	if c.SessionBackend == "redis" && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when SESSION_BACKEND=redis")
	}
	if c.OAuthClientID != "" && c.CookieSecret == "" {
		return errors.New("COOKIE_SECRET is required when OAUTH_CLIENT_ID is set")
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	return nil
}

// FederationEnabled reports whether federated sign-in is configured.
func (c *Config) FederationEnabled() bool {
	return c.OAuthClientID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
