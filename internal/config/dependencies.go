// Package config wires the application's dependencies from a configs.Config.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasktracker/configs"
	"tasktracker/internal/cache"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/memory"
	"tasktracker/internal/service"
	myws "tasktracker/internal/websocket"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Dependencies yang akan digunakan di seluruh aplikasi.
type Dependencies struct {
	Config configs.Config

	DB          *sql.DB
	RedisClient *redis.Client

	Users repository.UserRepository
	Tasks repository.TaskRepository
	Cache cache.Cache
	Hub   *myws.Hub

	Tokens      *token.Manager
	AuthService *service.AuthService
	UserService *service.UserService
	TaskService *service.TaskService
}

// NewDependencies connects the configured store and cache and builds the
// services. The caller owns the result and must call Close.
func NewDependencies(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	d := &Dependencies{Config: cfg, Cache: cache.Nop{}}

	switch cfg.StoreDriver {
	case configs.StoreDriverMemory:
		store := memory.NewStore()
		d.Users, d.Tasks = store.Users(), store.Tasks()
		logger.SystemLogger.Info("Using in-memory store")
	case configs.StoreDriverPostgres:
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.DB = db
		if err := repository.CreateTablesIfNotExist(ctx, db); err != nil {
			d.Close()
			return nil, err
		}
		d.Users = repository.NewPostgresUserRepository(db)
		d.Tasks = repository.NewPostgresTaskRepository(db)
		logger.SystemLogger.Info("Database Connected")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisEnabled() {
		client, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.RedisClient = client
		d.Cache = cache.NewRedisCache(client, cfg.CacheTTL)
		logger.SystemLogger.Info("Redis Connected")
	}

	d.build()
	return d, nil
}

// NewInMemory builds dependencies on the in-memory store without a cache.
// HTTP tests use it.
func NewInMemory(cfg configs.Config) *Dependencies {
	store := memory.NewStore()
	d := &Dependencies{
		Config: cfg,
		Users:  store.Users(),
		Tasks:  store.Tasks(),
		Cache:  cache.Nop{},
	}
	d.build()
	return d
}

// NewWithDB builds dependencies on an open postgres pool whose schema is
// already in place. Close releases db.
func NewWithDB(cfg configs.Config, db *sql.DB) *Dependencies {
	d := &Dependencies{
		Config: cfg,
		DB:     db,
		Users:  repository.NewPostgresUserRepository(db),
		Tasks:  repository.NewPostgresTaskRepository(db),
		Cache:  cache.Nop{},
	}
	d.build()
	return d
}

func (d *Dependencies) build() {
	d.Hub = myws.NewHub()
	d.Tokens = token.NewManager(d.Config.JWTSecret, d.Config.JWTTTL, d.Config.JWTIssuer)
	d.UserService = service.NewUserService(d.Users, d.Tasks, d.Cache)
	d.TaskService = service.NewTaskService(d.Tasks, d.Users, d.Cache, d.Hub)
	d.AuthService = service.NewAuthService(d.Users, d.UserService, d.Tokens, d.Cache)
}

// SeedAdmin creates the configured admin account when credentials are set.
func (d *Dependencies) SeedAdmin(ctx context.Context) error {
	if d.Config.AdminEmail == "" || d.Config.AdminPassword == "" {
		return nil
	}
	_, err := repository.CreateAdminUser(ctx, d.Users, d.Config.AdminName, d.Config.AdminEmail, d.Config.AdminPassword)
	return err
}

// Close stops the hub and releases the database and redis connections.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Hub != nil {
		d.Hub.Stop()
	}
	if d.RedisClient != nil {
		errs = append(errs, d.RedisClient.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	err := errors.Join(errs...)
	if err != nil {
		logger.ErrorLogger.Error("Error closing dependencies", zap.Error(err))
	}
	return err
}
