// @title         Tubewatch API
// @version       0.1.0
// @description   Video ingestion and search endpoints

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"tubewatch/internal/platform/config"
	"tubewatch/internal/platform/logger"
	phttp "tubewatch/internal/platform/net/http"
	"tubewatch/internal/platform/store"

	"tubewatch/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, storeConfig(root), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg, phttp.WithCORS(apiCfg))

	ingest := api.Mount(srv.Router(), api.Options{
		Config:        root,
		Store:         st,
		EnableSwagger: apiCfg.MayBool("SWAGGER", true),
	})

	if ingest.PollerEnabled() {
		ingest.Poller().Start(ctx)
	} else {
		l.Info().Msg("background poller disabled")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			l.Panic().Err(err).Msg("http server stopped")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ingest.Poller().Stop(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("poller did not stop cleanly")
	}
	ingest.Poller().Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http shutdown failed")
	}
}

// storeConfig enables exactly the backend named by CORE_STORE_BACKEND
// ("postgres" or "clickhouse")
func storeConfig(root config.Conf) store.Config {
	backend := root.MayString("CORE_STORE_BACKEND", "postgres")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	cfg := store.Config{AppName: "tubewatch"}
	switch backend {
	case "clickhouse":
		cfg.CH = store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientName: "tubewatch",
			ClientTag:  "api",
		}
	default:
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
		}
	}
	return cfg
}
