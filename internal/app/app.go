// Package app wires the process: config, database, external clients,
// repos, services, and the background workers, with explicit lifecycle.
package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/kotobalabs/kotoba-backend/internal/data/db"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/realtime"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis/worker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services

	worker   *worker.Runner
	consumer *realtime.Consumer
	cancel   context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	runner, err := worker.NewRunner(log, clients.Temporal, &worker.Activities{
		Log:    log,
		TTS:    clients.OpenAI,
		Bucket: clients.Bucket,
		RDB:    clients.Redis,
	})
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, fmt.Errorf("init synthesis worker: %w", err)
	}

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		worker:   runner,
		consumer: realtime.NewConsumer(log, clients.Redis, reposet.Flashcard),
	}, nil
}

// Start brings up the synthesis worker and the completion consumer, then
// kicks off the reconciliation sweep. Call once after New.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.worker.Start(runCtx); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start synthesis worker: %w", err)
	}
	if err := a.consumer.Start(runCtx); err != nil {
		a.Log.Warn("Completion consumer did not start; audio URLs will lag until restart", "error", err)
	}

	// Explicit sweep kick-off; any card left without audio gets exactly
	// one job, deduped against in-flight work by the job key.
	a.Services.Card.StartReconciliation(runCtx)
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.consumer != nil {
		a.consumer.Close()
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
