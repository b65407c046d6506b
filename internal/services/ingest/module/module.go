// Package module implements the ingest service module
package module

import (
	"tubewatch/internal/adapters/ingest/youtube"
	"tubewatch/internal/modkit"
	"tubewatch/internal/modkit/httpkit"
	ihttp "tubewatch/internal/services/ingest/http"
	"tubewatch/internal/services/ingest/service"
	vdomain "tubewatch/internal/services/videos/domain"
)

// Module implements the ingest service module
type Module struct {
	deps   modkit.Deps
	opts   Options
	svc    *service.Service
	poller *service.Poller
}

// New constructs a new ingest module writing into catalog
func New(deps modkit.Deps, catalog vdomain.CatalogPort) *Module {
	opts := FromConfig(deps.Cfg)

	client := youtube.NewClient(youtube.Options{
		BaseURL:    opts.BaseURL,
		Query:      opts.Query,
		Keys:       opts.Keys,
		Cooldown:   opts.Cooldown,
		PageSize:   opts.PageSize,
		MaxRetries: opts.MaxRetries,
	})
	svc := service.New(youtube.NewFetcher(client), catalog, service.Config{
		Interval: opts.Interval,
	})

	return &Module{
		deps:   deps,
		opts:   opts,
		svc:    svc,
		poller: service.NewPoller(svc),
	}
}

// Name satisfies the module contract
func (m *Module) Name() string { return "ingest" }

// Prefix satisfies the module contract
func (m *Module) Prefix() string { return "" }

// Poller exposes the background loop for lifecycle wiring in main
func (m *Module) Poller() *service.Poller { return m.poller }

// PollerEnabled reports whether config asks for the background loop
func (m *Module) PollerEnabled() bool { return m.opts.PollerEnabled }

// Runner exposes the cycle runner port
func (m *Module) Runner() *service.Service { return m.svc }

// MountRoutes mounts the ingest endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	ihttp.Register(r, m.svc)
}
