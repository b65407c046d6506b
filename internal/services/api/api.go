// Package api assembles the HTTP surface of the application
package api

import (
	"net/http"
	"time"

	"tubewatch/internal/platform/config"
	phttp "tubewatch/internal/platform/net/http"
	"tubewatch/internal/platform/net/middleware"
	"tubewatch/internal/platform/store"

	"tubewatch/internal/modkit"

	ingestmod "tubewatch/internal/services/ingest/module"
	videosmod "tubewatch/internal/services/videos/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	EnableSwagger bool
}

// Mount wires the modules onto the router and returns the ingest module so
// main can manage the poller lifecycle
func Mount(r phttp.Router, opt Options) *ingestmod.Module {
	deps := modkit.Deps{
		Log: opt.Store.Log,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	videos := videosmod.New(deps)
	ingest := ingestmod.New(deps, videos.Catalog())

	r.Use(
		middleware.RequestID(),
		middleware.RecoverJSON,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),
	)

	phttp.MountSwagger(r, opt.EnableSwagger)

	r.Get("/healthz", phttp.Handle(func(req *http.Request) phttp.Response {
		if err := opt.Store.Guard(req.Context()); err != nil {
			return phttp.Error(err)
		}
		return phttp.OK(map[string]string{"status": "ok"})
	}))

	r.Route("/api", func(apiR phttp.Router) {
		videos.MountRoutes(apiR)
		ingest.MountRoutes(apiR)
	})

	return ingest
}
