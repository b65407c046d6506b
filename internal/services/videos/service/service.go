// Package service provides the video catalog service implementation
package service

import (
	"context"
	"strings"

	"tubewatch/internal/core/similarity"
	"tubewatch/internal/services/videos/domain"
	"tubewatch/internal/services/videos/repo"
)

// Config for the videos service
type Config struct {
	DefaultPerPage int
	MaxPerPage     int

	// fuzzy fallback kicks in for short queries with zero exact matches
	FuzzyMaxLen    int
	FuzzyThreshold float64
	FuzzyWindow    int
}

// Service implements domain.CatalogPort over a repo.Storage backend
type Service struct {
	Storage repo.Storage
	Cfg     Config
}

// New constructs a new videos service
func New(storage repo.Storage, cfg Config) *Service {
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = 10
	}
	if cfg.MaxPerPage <= 0 {
		cfg.MaxPerPage = 50
	}
	if cfg.FuzzyMaxLen <= 0 {
		cfg.FuzzyMaxLen = 4
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = 0.18
	}
	if cfg.FuzzyWindow <= 0 {
		cfg.FuzzyWindow = 500
	}
	return &Service{Storage: storage, Cfg: cfg}
}

// Upsert implements domain.CatalogPort
func (s *Service) Upsert(ctx context.Context, recs []domain.VideoRecord) (int, error) {
	return s.Storage.Upsert(ctx, recs)
}

// Count implements domain.CatalogPort
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Storage.Count(ctx)
}

// List implements domain.CatalogPort
func (s *Service) List(ctx context.Context, q domain.ListQuery) (domain.PageResult, error) {
	q = s.clampList(q)
	recs, total, err := s.Storage.List(ctx, q)
	if err != nil {
		return domain.PageResult{}, err
	}
	return buildPage(recs, total, q.Page, q.PerPage), nil
}

// Search implements domain.CatalogPort. Exact matching happens in the backend;
// when that finds nothing and the query is short enough, a fuzzy pass over the
// newest records catches typos like "crik" for "cricket"
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) (domain.PageResult, error) {
	q.ListQuery = s.clampList(q.ListQuery)
	q.Query = strings.TrimSpace(q.Query)

	recs, total, err := s.Storage.Search(ctx, q)
	if err != nil {
		return domain.PageResult{}, err
	}
	if total > 0 || !s.fuzzyEligible(q.Query) {
		return buildPage(recs, total, q.Page, q.PerPage), nil
	}

	window, err := s.Storage.RecentWindow(ctx, s.Cfg.FuzzyWindow)
	if err != nil {
		return domain.PageResult{}, err
	}
	ranked := repo.FuzzyRank(window, q.Query, s.Cfg.FuzzyThreshold, q.Sort)
	return buildPage(repo.Page(ranked, q.Page, q.PerPage), len(ranked), q.Page, q.PerPage), nil
}

func (s *Service) fuzzyEligible(query string) bool {
	folded := similarity.Fold(query)
	return folded != "" && len([]rune(folded)) <= s.Cfg.FuzzyMaxLen
}

func (s *Service) clampList(q domain.ListQuery) domain.ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = s.Cfg.DefaultPerPage
	}
	if q.PerPage > s.Cfg.MaxPerPage {
		q.PerPage = s.Cfg.MaxPerPage
	}
	return q
}

func buildPage(recs []domain.VideoRecord, total, page, perPage int) domain.PageResult {
	if recs == nil {
		recs = []domain.VideoRecord{}
	}
	out := domain.PageResult{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Items:   recs,
	}
	if page > 1 {
		prev := page - 1
		out.PrevPage = &prev
	}
	if page*perPage < total {
		next := page + 1
		out.NextPage = &next
	}
	return out
}
