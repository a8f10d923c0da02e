package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackerwear/storefront/auth"
	"github.com/hackerwear/storefront/config"
	"github.com/hackerwear/storefront/handlers"
	authn "github.com/hackerwear/storefront/internal/auth"
	"github.com/hackerwear/storefront/internal/password"
	"github.com/hackerwear/storefront/middleware"
	"github.com/hackerwear/storefront/repositories"
	"github.com/hackerwear/storefront/repositories/postgres"
	"github.com/hackerwear/storefront/repositories/rediscache"
	"github.com/hackerwear/storefront/services/account"
	"github.com/hackerwear/storefront/services/audit"
	"github.com/hackerwear/storefront/services/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// auditStopTimeout bounds how long Close waits for queued auth events
const auditStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Redis  *redis.Client
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory
	ownsDB      bool

	// Repositories. Sessions is the Redis-cached store when a cache is configured.
	Users        repositories.UserRepository
	Products     repositories.ProductRepository
	Sessions     repositories.SessionRepository
	AuthEvents   repositories.AuthEventRepository
	TxManager    repositories.TransactionManager
	SessionCache *rediscache.SessionCache

	// Token auth
	Keys      *authn.KeyPair
	Issuer    *authn.Issuer
	Validator *authn.Validator
	Guard     *authn.Guard

	// Services
	Audit    *audit.AuditService
	Accounts *account.Service
	Catalog  *catalog.Service

	// HTTP
	authHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
	HealthHandler  *handlers.HealthHandler
	CatalogHandler *handlers.CatalogHandler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies opens the database and the optional Redis cache, then wires
// every component. A signing key that cannot be loaded is fatal.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.GetDB().HealthCheck(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to initialize session cache: %w", err)
		}
		redisClient = redis.NewClient(opts)
	}

	deps, err := Wire(cfg, factory.GetDB(), redisClient, logger)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = factory.Close()
		return nil, err
	}
	deps.ownsDB = true

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Wire builds the application on an open database. redisClient may be nil,
// in which case sessions are read straight from Postgres.
func Wire(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		RepoFactory: postgres.NewRepositoryFactoryForDB(db, logger),
	}

	deps.initRepositories()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initHTTP()

	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Users = repos.Users
	d.Products = repos.Products
	d.Sessions = repos.Sessions
	d.AuthEvents = repos.AuthEvents
	d.TxManager = d.RepoFactory.GetTransactionManager()

	if d.Redis != nil {
		d.SessionCache = rediscache.NewSessionCache(d.Sessions, d.Redis, d.Config.Redis.KeyPrefix, d.Logger)
		d.Sessions = d.SessionCache
		d.Logger.Info("session cache enabled")
	}

	d.Logger.Info("repositories initialized")
}

// initAuth loads the signing key and builds the issuer, validator and guard
func (d *Dependencies) initAuth(cfg *config.Config) error {
	keys, err := authn.LoadOrGenerateKeyPair(cfg.Auth.KeyPath)
	if err != nil {
		return err
	}
	d.Keys = keys

	tokenCfg := authn.TokenConfig{
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Validity: cfg.Auth.TokenValidity,
	}

	d.Issuer = authn.NewIssuer(keys, d.Sessions, tokenCfg, d.Logger)
	d.Validator = authn.NewValidator(keys, d.Sessions, tokenCfg)
	d.Guard = authn.NewGuard(d.Validator, cfg.Auth.RevocationCheck, d.Logger)

	d.Logger.Info("signing key loaded",
		zap.String("path", cfg.Auth.KeyPath),
		zap.String("fingerprint", keys.PublicKeyFingerprint()),
		zap.Bool("revocation_check", cfg.Auth.RevocationCheck))
	return nil
}

// initServices builds the audit recorder and the domain services
func (d *Dependencies) initServices(cfg *config.Config) error {
	d.Audit = audit.NewAuditService(d.AuthEvents, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	if err := d.Audit.Start(); err != nil {
		return err
	}

	hasher, err := password.NewHasher(password.Params{
		MemoryKB:    uint32(cfg.Password.MemoryKB),
		Time:        uint32(cfg.Password.Time),
		Parallelism: uint8(cfg.Password.Parallelism),
	})
	if err != nil {
		_ = d.Audit.Stop(auditStopTimeout)
		return err
	}

	d.Accounts, err = account.NewService(d.Users, d.Sessions, hasher, d.Issuer, d.Audit, d.Logger)
	if err != nil {
		_ = d.Audit.Stop(auditStopTimeout)
		return err
	}

	d.Catalog = catalog.NewService(d.Products, d.TxManager, d.Logger)
	return nil
}

// initHTTP builds the handlers and middleware the router mounts
func (d *Dependencies) initHTTP() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Guard, d.Logger)
	d.authHandler = auth.NewHandler(d.Accounts, d.Logger)
	d.CatalogHandler = handlers.NewCatalogHandler(d.Catalog, d.Logger)

	if d.SessionCache != nil {
		d.HealthHandler = handlers.NewHealthHandler(d.DB, d.SessionCache, d.Logger)
	} else {
		d.HealthHandler = handlers.NewHealthHandler(d.DB, nil, d.Logger)
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// drain queued auth events before the database goes away
	if d.Audit != nil {
		if err := d.Audit.Stop(auditStopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
		d.Audit = nil
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
		d.Redis = nil
	}

	// a pool handed to Wire belongs to the caller
	if d.RepoFactory != nil && d.ownsDB {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}
	d.RepoFactory = nil

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
