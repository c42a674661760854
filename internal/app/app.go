package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"postsapi/config"
	"postsapi/internal/adapter/in/rest"
	memstore "postsapi/internal/adapter/out/storage/inmemory"
	pgstore "postsapi/internal/adapter/out/storage/postgres"
	"postsapi/internal/service"
	"postsapi/pkg/logger"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	cfg  config.Config
	srv  *http.Server
	pool *pgxpool.Pool
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	var (
		postStorage service.PostStorage
		trManager   service.TxManager
		pool        *pgxpool.Pool
	)

	switch cfg.StorageType {
	case config.StoragePostgres:
		var err error
		pool, err = pgstore.NewPool(ctx, cfg.Postgres.GetDSN(), cfg.Postgres.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}

		store := pgstore.NewPostStorage(pool, trmpgx.DefaultCtxGetter)
		if cfg.Postgres.AutoCreate {
			if err := store.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		postStorage = store
		trManager = manager.Must(trmpgx.NewDefaultFactory(pool))

	default:
		postStorage = memstore.NewPostStorage()
		trManager = service.NoopTxManager{}
	}

	postSvc := service.NewPostService(postStorage, trManager)

	gin.SetMode(gin.ReleaseMode)
	router := rest.NewRouter(postSvc, rest.Options{
		BasePath:     cfg.HTTP.BasePath,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Logger:       log,
	})

	addr := ":" + cfg.HTTP.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("app initialized", "addr", addr, "storage", cfg.StorageType, "base_path", cfg.HTTP.BasePath)
	return &App{cfg: cfg, srv: srv, pool: pool}, nil
}

func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := a.srv.Shutdown(shCtx)
		a.close()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		a.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
