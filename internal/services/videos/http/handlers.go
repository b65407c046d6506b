// Package http provides http transport for the video catalog
package http

import (
	stdhttp "net/http"
	"strconv"

	"tubewatch/internal/modkit/httpkit"
	perr "tubewatch/internal/platform/errors"
	"tubewatch/internal/platform/net/http/bind"
	"tubewatch/internal/services/videos/domain"
	svc "tubewatch/internal/services/videos/service"
)

// Register mounts catalog endpoints on the given router
func Register(r httpkit.Router, s *svc.Service) {
	h := &handlers{svc: s}

	// paged listing of the whole corpus
	httpkit.Get(r, "/videos", h.list)

	// relevance-ranked text search
	httpkit.Get(r, "/videos/search", h.search)
}

type handlers struct{ svc *svc.Service }

type searchInput struct {
	Query string `json:"q" validate:"required,min=1,max=256"`
}

// @Summary List ingested videos
// @Tags Videos
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param per_page query int false "Page size"
// @Param channel query string false "Channel title filter"
// @Param sort query string false "published_desc or published_asc"
// @Success 200 {object} domain.PageResult "ok"
// @Router /videos [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	lq, err := listQuery(r)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), lq)
}

// @Summary Search videos by text
// @Tags Videos
// @Produce json
// @Param q query string true "Search text"
// @Param page query int false "Page number (1-based)"
// @Param per_page query int false "Page size"
// @Param channel query string false "Channel title filter"
// @Success 200 {object} domain.PageResult "ok"
// @Router /videos/search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	in := searchInput{Query: r.URL.Query().Get("q")}
	if err := bind.Struct(in); err != nil {
		return nil, err
	}
	lq, err := listQuery(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Search(r.Context(), domain.SearchQuery{Query: in.Query, ListQuery: lq})
}

func listQuery(r *stdhttp.Request) (domain.ListQuery, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		return domain.ListQuery{}, err
	}
	perPage, err := intParam(q.Get("per_page"), "per_page")
	if err != nil {
		return domain.ListQuery{}, err
	}
	return domain.ListQuery{
		Page:    page,
		PerPage: perPage,
		Channel: q.Get("channel"),
		Sort:    domain.ParseSort(q.Get("sort")),
	}, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, perr.Validation(name, "must be a non-negative integer")
	}
	return n, nil
}
