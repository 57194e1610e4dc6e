// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Intuit endpoint defaults. The authorize and token endpoints are shared
// between sandbox and production; only the API base differs.
const (
	defaultAuthURL        = "https://appcenter.intuit.com/connect/oauth2"
	defaultTokenURL       = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	defaultRevokeURL      = "https://developer.api.intuit.com/v2/oauth2/tokens/revoke"
	sandboxAPIBaseURL     = "https://sandbox-quickbooks.api.intuit.com"
	productionAPIBaseURL  = "https://quickbooks.api.intuit.com"
	defaultMinorVersion   = "75"
	defaultScopes         = "com.intuit.quickbooks.accounting openid"
	defaultTokenTTL       = 100 * 24 * time.Hour
	defaultUserID         = "default_user"
	defaultRedisKeyPrefix = "qbconnect"
)

// Config holds the full application configuration.
type Config struct {
	App struct {
		Env      string // dev | staging | prod
		LogLevel string
	}

	Server struct {
		Port    string
		Timeout int // seconds, read/write
	}

	QuickBooks struct {
		ClientID     string
		ClientSecret string
		Environment  string // sandbox | production
		RedirectURI  string
		Scopes       []string
		AuthURL      string
		TokenURL     string
		RevokeURL    string
		APIBaseURL   string
		MinorVersion string
	}

	Session struct {
		Secret string
	}

	Auth struct {
		DefaultUserID string
	}

	TokenStore struct {
		Kind string // cookie | redis | redis-fallback
		TTL  time.Duration
	}

	Redis struct {
		Addresses []string
		Password  string
		DB        int
		KeyPrefix string
	}
}

// IsProduction reports whether the app runs against the production
// QuickBooks environment.
func (c Config) IsProduction() bool {
	return c.QuickBooks.Environment == "production"
}

// Load reads configuration from the environment, honoring a local .env
// file when present. Missing QuickBooks credentials are a fatal
// configuration error.
func Load() (Config, error) {
	// Best effort: a missing .env is fine, real env vars win anyway.
	_ = godotenv.Load()

	var cfg Config

	cfg.App.Env = getenv("APP_ENV", "dev")
	cfg.App.LogLevel = getenv("LOG_LEVEL", "info")

	cfg.Server.Port = getenv("PORT", "8080")
	cfg.Server.Timeout = getenvInt("SERVER_TIMEOUT", 15)

	qb := &cfg.QuickBooks
	qb.ClientID = os.Getenv("QB_CLIENT_ID")
	qb.ClientSecret = os.Getenv("QB_CLIENT_SECRET")
	qb.Environment = os.Getenv("QB_ENVIRONMENT")
	qb.RedirectURI = os.Getenv("QB_REDIRECT_URI")
	qb.Scopes = strings.Fields(getenv("QB_SCOPES", defaultScopes))
	qb.AuthURL = getenv("QB_AUTH_URL", defaultAuthURL)
	qb.TokenURL = getenv("QB_TOKEN_URL", defaultTokenURL)
	qb.RevokeURL = getenv("QB_REVOKE_URL", defaultRevokeURL)
	qb.MinorVersion = getenv("QB_MINOR_VERSION", defaultMinorVersion)

	var missing []string
	if qb.ClientID == "" {
		missing = append(missing, "QB_CLIENT_ID")
	}
	if qb.ClientSecret == "" {
		missing = append(missing, "QB_CLIENT_SECRET")
	}
	if qb.Environment == "" {
		missing = append(missing, "QB_ENVIRONMENT")
	}
	if qb.RedirectURI == "" {
		missing = append(missing, "QB_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch qb.Environment {
	case "sandbox":
		qb.APIBaseURL = getenv("QB_API_BASE_URL", sandboxAPIBaseURL)
	case "production":
		qb.APIBaseURL = getenv("QB_API_BASE_URL", productionAPIBaseURL)
	default:
		return Config{}, fmt.Errorf("QB_ENVIRONMENT must be sandbox or production, got %q", qb.Environment)
	}

	cfg.Session.Secret = os.Getenv("SESSION_SECRET")
	if cfg.Session.Secret == "" && cfg.App.Env != "dev" {
		return Config{}, fmt.Errorf("missing required configuration: SESSION_SECRET")
	}

	cfg.Auth.DefaultUserID = getenv("DEFAULT_USER_ID", defaultUserID)

	cfg.TokenStore.Kind = getenv("TOKEN_STORE", "cookie")
	switch cfg.TokenStore.Kind {
	case "cookie", "redis", "redis-fallback":
	default:
		return Config{}, fmt.Errorf("TOKEN_STORE must be cookie, redis or redis-fallback, got %q", cfg.TokenStore.Kind)
	}
	cfg.TokenStore.TTL = getenvDuration("TOKEN_STORE_TTL", defaultTokenTTL)

	cfg.Redis.Addresses = splitNonEmpty(getenv("REDIS_ADDR", "localhost:6379"))
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getenvInt("REDIS_DB", 0)
	cfg.Redis.KeyPrefix = getenv("REDIS_KEY_PREFIX", defaultRedisKeyPrefix)

	if cfg.TokenStore.Kind != "cookie" && len(cfg.Redis.Addresses) == 0 {
		return Config{}, fmt.Errorf("TOKEN_STORE=%s requires REDIS_ADDR", cfg.TokenStore.Kind)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
