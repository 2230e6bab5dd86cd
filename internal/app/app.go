// Package app owns every store of the process and their lifecycle:
// state is loaded once at start, checkpointed periodically and flushed at
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/chat"
	"github.com/suPer8Hu/ai-companion/internal/command"
	"github.com/suPer8Hu/ai-companion/internal/config"
	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/db"
	"github.com/suPer8Hu/ai-companion/internal/httpapi"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/handlers"
	"github.com/suPer8Hu/ai-companion/internal/identity"
	"github.com/suPer8Hu/ai-companion/internal/persist"
	"github.com/suPer8Hu/ai-companion/internal/persona"
	"github.com/suPer8Hu/ai-companion/internal/store/rabbitmq"
	"github.com/suPer8Hu/ai-companion/internal/store/redisstore"
)

type App struct {
	Cfg        config.Config
	Log        *zap.Logger
	Identities *identity.Store
	Archive    *conversation.Archive
	Chat       *chat.Service
	Gateway    *persist.Gateway
	Router     http.Handler

	closers []func() error
	wg      sync.WaitGroup
}

func sessionLinks(ctx context.Context, cfg config.Config) (identity.SessionLinks, func() error, error) {
	switch cfg.SessionBackend {
	case "", "memory":
		return identity.NewMemoryLinks(), nil, nil
	case "redis":
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		if err := rds.Ping(ctx); err != nil {
			_ = rds.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return rds, rds.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

func backend(cfg config.Config) (persist.Backend, func() error, error) {
	switch cfg.StorageBackend {
	case "", "file":
		b, err := persist.NewFileBackend(cfg.DataDir)
		return b, nil, err
	case "db":
		gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		b, err := persist.NewDBBackend(gdb)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return b, sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// New wires all components and loads persisted state.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Cfg: cfg, Log: log}

	links, closeLinks, err := sessionLinks(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.addCloser(closeLinks)

	store, closeStore, err := backend(cfg)
	if err != nil {
		_ = a.closeAll()
		return nil, err
	}
	a.addCloser(closeStore)

	var events chat.EventPublisher = rabbitmq.Noop{}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			_ = a.closeAll()
			return nil, fmt.Errorf("rabbit publisher: %w", err)
		}
		a.addCloser(pub.Close)
		events = pub
	}

	a.Identities = identity.NewStore(links)
	a.Archive = conversation.NewArchive()
	buffers := conversation.NewBuffers()
	personas := persona.Builtin()

	a.Chat = chat.NewService(chat.Deps{
		Identities: a.Identities,
		Archive:    a.Archive,
		Buffers:    buffers,
		Commands:   command.NewInterpreter(a.Identities, buffers, command.NewWorkspaces(), personas),
		Personas:   personas,
		Registry:   Registry(cfg),
		Provider:   cfg.AIProvider,
		Events:     events,
		Log:        log,
	})

	a.Gateway = persist.NewGateway(store, a.Identities, a.Archive, log)
	if err := a.Gateway.Load(ctx); err != nil {
		_ = a.closeAll()
		return nil, fmt.Errorf("load state: %w", err)
	}

	h := handlers.NewHandler(a.Identities, a.Chat, a.Gateway, handlers.Options{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, log)
	a.Router = httpapi.NewRouter(h, httpapi.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	}, log)

	log.Info("app ready",
		zap.String("storage", cfg.StorageBackend),
		zap.String("sessions", cfg.SessionBackend),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("events", cfg.RabbitURL != ""),
	)
	return a, nil
}

func (a *App) addCloser(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

// StartCheckpoints saves state every PersistInterval until ctx is done.
func (a *App) StartCheckpoints(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Gateway.Run(ctx, a.Cfg.PersistInterval)
	}()
}

// Close waits for the checkpoint loop, flushes state and releases
// connections. Cancel the StartCheckpoints context first.
func (a *App) Close(ctx context.Context) error {
	a.wg.Wait()
	err := a.Gateway.Save(ctx)
	return errors.Join(err, a.closeAll())
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
