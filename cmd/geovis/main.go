// Command geovis tracks brand visibility in AI-generated answers.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/geovis/internal/adapters/driven/cache"
	"github.com/custodia-labs/geovis/internal/adapters/driven/catalog"
	"github.com/custodia-labs/geovis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/geovis/internal/adapters/driven/httpsource"
	"github.com/custodia-labs/geovis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geovis/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geovis/internal/adapters/driving/cli"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/services"
	"github.com/custodia-labs/geovis/internal/logger"
	"github.com/custodia-labs/geovis/internal/metrics"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cleanup, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// setup wires the stores, engine, facade and scheduler into the CLI. The
// returned function releases the store and cache connections.
func setup() (func(), error) {
	configStore, err := openConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	cfg, err := services.NewConfig(*settings)
	if err != nil {
		return nil, err
	}

	store, err := openStores(settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	closers := []func() error{store.close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup: %v", err)
			}
		}
	}

	engine := services.NewEngine(store.queries, store.rankings, store.snapshots, cfg)

	resultCache, closeCache := openCache(settings.Cache)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}
	engine.SetCache(resultCache)

	live, err := liveSource(settings.Source, engine)
	if err != nil {
		cleanup()
		return nil, err
	}

	collector := metrics.New(version)
	substitute := catalog.New()
	substitute.SetLocation(cfg.Location)
	facade := services.NewFacade(live, substitute, cfg)
	facade.SetObserver(collector)

	schedulerConfig := settingsService.GetSchedulerConfig()
	scheduler := services.NewScheduler(schedulerConfig, store.tasks, collector.InstrumentWarmer(engine))

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Facade:          facade,
		Queries:         engine.Queries(),
		Observations:    engine.Observations(),
		Settings:        settingsService,
		Scheduler:       scheduler,
		SchedulerConfig: schedulerConfig,
		LocalSource:     engine,
		Metrics:         collector,
	})

	return cleanup, nil
}

// openConfig loads config.toml from $GEOVIS_HOME or ~/.geovis. Without either
// settings live in memory and settings set does not outlast the process.
func openConfig() (driven.ConfigStore, error) {
	dir := os.Getenv("GEOVIS_HOME")
	if dir == "" {
		if _, err := os.UserHomeDir(); err != nil {
			logger.Warn("config: %v; settings will not be saved", err)
			return memory.NewConfigStore(), nil
		}
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// stores are the persistence ports the engine and scheduler run on.
type stores struct {
	queries   driven.QueryStore
	rankings  driven.RankingStore
	snapshots driven.SnapshotStore
	tasks     driven.SchedulerStore
	close     func() error
}

// openStores opens the SQLite database, or keeps everything in memory when
// storage.data_dir is ":memory:". An unset data_dir follows $GEOVIS_HOME.
func openStores(settings domain.StorageSettings) (*stores, error) {
	dataDir := settings.DataDir
	if home := os.Getenv("GEOVIS_HOME"); dataDir == "" && home != "" {
		dataDir = filepath.Join(home, "data")
	}

	if settings.InMemory() {
		logger.Debug("storage: in memory, nothing is persisted")
		return &stores{
			queries:   memory.NewQueryStore(),
			rankings:  memory.NewRankingStore(),
			snapshots: memory.NewSnapshotStore(),
			tasks:     memory.NewSchedulerStore(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("storage: %s", db.Path())
	return &stores{
		queries:   db.QueryStore(),
		rankings:  db.RankingStore(),
		snapshots: db.SnapshotStore(),
		tasks:     db.SchedulerStore(),
		close:     db.Close,
	}, nil
}

// openCache connects to Redis when an address is configured and falls back
// to the in-process cache when it is unreachable.
func openCache(settings domain.CacheSettings) (driven.ResultCache, func() error) {
	if settings.RedisAddr == "" {
		return cache.NewMemoryCache(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := cache.DialRedis(ctx, settings.RedisAddr)
	if err != nil {
		logger.Warn("%v; using in-process cache", err)
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(client, ""), client.Close
}

// liveSource returns the remote observation source when one is configured,
// otherwise the local engine.
func liveSource(settings domain.SourceSettings, engine *services.Engine) (driven.VisibilitySource, error) {
	if !settings.IsRemote() {
		return engine, nil
	}

	var opts []httpsource.Option
	if settings.RequestsPerSecond > 0 {
		opts = append(opts, httpsource.WithRateLimit(settings.RequestsPerSecond))
	}
	client, err := httpsource.New(settings.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("configuring source: %w", err)
	}
	return client, nil
}
