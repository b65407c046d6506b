// Command tubewatch-fetch runs a single ingestion cycle and exits.
// Useful for cron-driven setups and for smoke testing credentials
package main

import (
	"context"
	"os/signal"
	"syscall"

	"tubewatch/internal/platform/config"
	"tubewatch/internal/platform/logger"
	"tubewatch/internal/platform/store"

	"tubewatch/internal/modkit"
	ingestmod "tubewatch/internal/services/ingest/module"
	videosmod "tubewatch/internal/services/videos/module"
)

func main() {
	root := config.New()
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

	deps := modkit.Deps{
		Log: st.Log,
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
	}

	videos := videosmod.New(deps)
	ingest := ingestmod.New(deps, videos.Catalog())
	defer ingest.Poller().Close()

	res := ingest.Runner().Cycle(ctx)
	if res.Error != "" {
		l.Error().Str("error", res.Error).Msg("fetch cycle failed")
		return
	}
	l.Info().
		Int("fetched", res.Fetched).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("fetch cycle done")
}

// storeConfig enables exactly the backend named by CORE_STORE_BACKEND
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
			ClientTag:  "fetch",
		}
	default:
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
		}
	}
	return cfg
}
