// Package module implements the videos service module
package module

import (
	"tubewatch/internal/modkit"
	"tubewatch/internal/modkit/httpkit"
	"tubewatch/internal/modkit/repokit"
	"tubewatch/internal/services/videos/domain"
	vhttp "tubewatch/internal/services/videos/http"
	"tubewatch/internal/services/videos/repo"
	"tubewatch/internal/services/videos/service"
)

// Module implements the videos service module
type Module struct {
	deps modkit.Deps
	svc  *service.Service
}

// New constructs a new videos module. Postgres is the preferred backend when
// both stores are configured; ClickHouse serves as the substring-only tier
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var storage repo.Storage
	switch {
	case deps.PG != nil:
		storage = repokit.MustBind(repo.NewPG(), deps.PG)
	case deps.CH != nil:
		storage = repo.NewCH(deps.CH)
	default:
		panic("videos module requires a configured store")
	}

	svc := service.New(storage, service.Config{
		DefaultPerPage: opts.DefaultPerPage,
		MaxPerPage:     opts.MaxPerPage,
		FuzzyMaxLen:    opts.FuzzyMaxLen,
		FuzzyThreshold: opts.FuzzyThreshold,
		FuzzyWindow:    opts.FuzzyWindow,
	})

	return &Module{deps: deps, svc: svc}
}

// Name satisfies the module contract
func (m *Module) Name() string { return "videos" }

// Prefix satisfies the module contract
func (m *Module) Prefix() string { return "" }

// Catalog exposes the catalog port for other modules
func (m *Module) Catalog() domain.CatalogPort { return m.svc }

// MountRoutes mounts the catalog endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	vhttp.Register(r, m.svc)
}
