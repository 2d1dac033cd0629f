// Package app wires the storage tiers, services and worker into one
// container built at process start.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"leet2git/internal/api"
	"leet2git/internal/app/service"
	"leet2git/internal/app/worker"
	"leet2git/internal/common"
	"leet2git/internal/common/clock"
	"leet2git/internal/common/security"
	"leet2git/internal/common/validate"
	"leet2git/internal/domain/model"
	"leet2git/internal/domain/repository"
	"leet2git/internal/platform/cache"
	"leet2git/internal/platform/config"
	"leet2git/internal/platform/database"

	"github.com/redis/go-redis/v9"
)

type App struct {
	Config      *config.Config
	Store       repository.StorageRepository
	Issuer      *security.TokenIssuer
	GitHub      *service.GitHubService
	Coordinator *service.SyncCoordinator
	Dispatcher  *service.Dispatcher
	KeepAlive   *worker.KeepAliveWorker

	sqlDBs  map[string]*sql.DB
	rdb     *redis.Client
	closers []func() error
}

// New connects the configured backends and builds every component once.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, sqlDBs: map[string]*sql.DB{}}

	syncTier, err := a.openTier(ctx, cfg.SyncTierDriver, "sync")
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("sync tier: %w", err)
	}
	localTier, err := a.openTier(ctx, cfg.LocalTierDriver, "local")
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("local tier: %w", err)
	}

	sealer, err := security.NewSealer(cfg.StoreSecret)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = repository.NewStorageRepository(syncTier, localTier, sealer)
	a.Issuer = security.NewTokenIssuer(cfg.ClientJWTKey, cfg.ClientJWTExp)

	a.GitHub, err = service.NewGitHubService(a.Store, service.GitHubOptions{
		BaseURL:        cfg.GitHubAPIURL,
		ProblemBaseURL: cfg.ProblemBaseURL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Coordinator = service.NewSyncCoordinator(a.Store, a.GitHub, clock.Real{})
	a.Dispatcher = service.NewDispatcher(a.Store, a.GitHub, a.Coordinator)
	a.KeepAlive = worker.NewKeepAliveWorker(a.Store, clock.Real{}, cfg.KeepAliveInterval)
	return a, nil
}

// ErrPrivateStore is returned by operations that write the store from outside
// the server while a tier lives only in this process's memory.
var ErrPrivateStore = errors.New("storage tier is in-memory and not shared with the server")

// SelectRepository confirms the repository exists for the stored credential
// and records it as the sync target.
func (a *App) SelectRepository(ctx context.Context, fullName string) (*model.Repository, error) {
	if a.Config.SyncTierDriver == config.DriverMemory {
		return nil, fmt.Errorf("set SYNC_TIER_DRIVER to sqlite, postgres or redis: %w", ErrPrivateStore)
	}
	if !validate.FullRepoName(fullName) {
		return nil, common.Errorf("repository must be in owner/name form, got %q: %w", fullName, common.ErrValidation)
	}
	owner, name, _ := strings.Cut(fullName, "/")
	repo, err := a.GitHub.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if err := a.Store.SetSelectedRepo(ctx, repo.FullName); err != nil {
		return nil, fmt.Errorf("failed to select repository: %w", err)
	}
	log.Printf("INFO: Selected repository %s", repo.FullName)
	return repo, nil
}

// ClearStorage wipes both tiers.
func (a *App) ClearStorage(ctx context.Context) error {
	if a.Config.SyncTierDriver == config.DriverMemory || a.Config.LocalTierDriver == config.DriverMemory {
		return ErrPrivateStore
	}
	if err := a.Store.Clear(ctx); err != nil {
		return err
	}
	log.Println("INFO: Storage cleared")
	return nil
}

// Handler is the HTTP surface for the message channel.
func (a *App) Handler() http.Handler {
	return api.NewRouter(a.Issuer, a.Dispatcher, a.Store)
}

func (a *App) openTier(ctx context.Context, driver, namespace string) (repository.KVTier, error) {
	switch driver {
	case config.DriverMemory:
		return repository.NewMemoryTier(), nil
	case config.DriverRedis:
		rdb, err := a.redis(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisTier(rdb, a.Config.RedisKeyPrefix+namespace+":"), nil
	case config.DriverSQLite:
		db, err := a.sqlDB(driver)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLTier(ctx, db, repository.DialectSQLite, namespace)
	case config.DriverPostgres:
		db, err := a.sqlDB(driver)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLTier(ctx, db, repository.DialectPostgres, namespace)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// sqlDB opens each database once so both tiers can share it.
func (a *App) sqlDB(driver string) (*sql.DB, error) {
	if db, ok := a.sqlDBs[driver]; ok {
		return db, nil
	}
	var (
		db  *sql.DB
		err error
	)
	if driver == config.DriverPostgres {
		db, err = database.ConnectPostgres(a.Config.DBConnStr)
	} else {
		db, err = database.OpenSQLite(a.Config.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	a.sqlDBs[driver] = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

func (a *App) redis(ctx context.Context) (*redis.Client, error) {
	if a.rdb != nil {
		return a.rdb, nil
	}
	rdb, err := cache.ConnectRedis(ctx, cache.RedisOptions{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	a.rdb = rdb
	a.closers = append(a.closers, rdb.Close)
	return rdb, nil
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("ERROR: Closing backend: %v", err)
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
