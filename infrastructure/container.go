// infrastructure/container.go
package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/eGGnogSC/qbconnect/config"
	redisinfra "github.com/eGGnogSC/qbconnect/infrastructure/redis"
	"github.com/eGGnogSC/qbconnect/internal/auth"
	"github.com/eGGnogSC/qbconnect/internal/company"
	"github.com/eGGnogSC/qbconnect/internal/invoice"
	"github.com/eGGnogSC/qbconnect/internal/logger"
	"github.com/eGGnogSC/qbconnect/internal/qb"
	"github.com/eGGnogSC/qbconnect/pkg/qbclient"
)

// Container provides application dependencies
type Container struct {
	Cfg config.Config

	// Services
	OAuth   *auth.Service
	Facades *qb.Factory

	// Handlers
	AuthHandler    *auth.Handler
	CompanyHandler *company.Handler
	InvoiceHandler *invoice.Handler

	// Infrastructure
	RedisClient goredis.UniversalClient
	RedisHealth *redisinfra.HealthChecker
	Stores      auth.StoreFactory
}

// NewContainer creates and initializes the dependency container
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	c := &Container{Cfg: cfg}

	stores, err := c.buildStoreFactory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Stores = stores

	c.OAuth = auth.NewService(auth.OAuthConfig{
		ClientID:     cfg.QuickBooks.ClientID,
		ClientSecret: cfg.QuickBooks.ClientSecret,
		RedirectURI:  cfg.QuickBooks.RedirectURI,
		Scopes:       cfg.QuickBooks.Scopes,
		AuthURL:      cfg.QuickBooks.AuthURL,
		TokenURL:     cfg.QuickBooks.TokenURL,
		RevokeURL:    cfg.QuickBooks.RevokeURL,
	})

	apiClient := qbclient.NewClient(cfg.QuickBooks.APIBaseURL, cfg.QuickBooks.MinorVersion)
	c.Facades = qb.NewFactory(c.OAuth, c.Stores, apiClient)

	sessionStore := auth.NewSessionStore(cfg.Session.Secret, cfg.IsProduction())
	c.AuthHandler = auth.NewHandler(c.OAuth, sessionStore, c.Stores)
	c.CompanyHandler = company.NewHandler(c.Facades)
	c.InvoiceHandler = invoice.NewHandler(c.Facades)

	return c, nil
}

// buildStoreFactory selects the token store backend. The cookie store
// is request-scoped; the redis variants share one instance.
func (c *Container) buildStoreFactory(ctx context.Context, cfg config.Config) (auth.StoreFactory, error) {
	switch cfg.TokenStore.Kind {
	case "cookie":
		opts := auth.CookieOptions{
			Secure: cfg.IsProduction(),
			TTL:    cfg.TokenStore.TTL,
		}
		return func(w http.ResponseWriter, r *http.Request) auth.TokenStore {
			return auth.NewCookieTokenStore(w, r, opts)
		}, nil

	case "redis":
		client := c.dialRedis(cfg)
		store := auth.NewRedisTokenStore(client, cfg.Redis.KeyPrefix, cfg.TokenStore.TTL)
		return func(http.ResponseWriter, *http.Request) auth.TokenStore { return store }, nil

	case "redis-fallback":
		client := c.dialRedis(cfg)
		c.RedisHealth = redisinfra.NewHealthChecker(ctx, client, 30*time.Second)
		store := auth.NewFallbackTokenStore(client, cfg.Redis.KeyPrefix, cfg.TokenStore.TTL, c.RedisHealth.IsHealthy)
		store.StartReplicationRoutine(ctx)
		return func(http.ResponseWriter, *http.Request) auth.TokenStore { return store }, nil
	}

	return nil, fmt.Errorf("unknown token store kind %q", cfg.TokenStore.Kind)
}

func (c *Container) dialRedis(cfg config.Config) goredis.UniversalClient {
	rcfg := redisinfra.DefaultConfig()
	rcfg.Addresses = cfg.Redis.Addresses
	rcfg.Password = cfg.Redis.Password
	rcfg.DB = cfg.Redis.DB

	c.RedisClient = redisinfra.NewClient(rcfg)
	return c.RedisClient
}

// Shutdown gracefully closes connections
func (c *Container) Shutdown() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Named("infrastructure").Warn("error closing redis connection", logger.Err(err))
		}
	}
}
