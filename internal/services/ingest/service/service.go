// Package service provides the ingest service implementation
package service

import (
	"context"
	"sync"
	"time"

	"tubewatch/internal/platform/logger"
	"tubewatch/internal/services/ingest/domain"
	vdomain "tubewatch/internal/services/videos/domain"
)

// Config for the ingest service
type Config struct {
	Interval time.Duration
}

// Service implements domain.RunnerPort. One instance is shared by the poller
// and the manual fetch endpoint, so the watermark and last-cycle snapshot are
// mutex guarded
type Service struct {
	fetcher domain.FetcherPort
	catalog vdomain.CatalogPort
	cfg     Config
	log     logger.Logger

	mu        sync.Mutex
	watermark time.Time
	last      *domain.CycleResult
	running   bool
}

// New constructs a new ingest service. The watermark starts at "now": a
// fresh process only ingests videos published after it came up, and a
// restart re-covers nothing older (idempotent upserts make overlap harmless)
func New(fetcher domain.FetcherPort, catalog vdomain.CatalogPort, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Service{
		fetcher:   fetcher,
		catalog:   catalog,
		cfg:       cfg,
		log:       *logger.Named("ingest"),
		watermark: time.Now().UTC(),
	}
}

// Cycle implements domain.RunnerPort. It fetches everything newer than the
// watermark, upserts, and advances the watermark to the newest publish time
// seen. The watermark only moves forward; a cycle that fails or fetches
// nothing leaves it untouched
func (s *Service) Cycle(ctx context.Context) domain.CycleResult {
	res := domain.CycleResult{StartedAt: time.Now().UTC()}

	s.mu.Lock()
	cutoff := s.watermark
	s.mu.Unlock()

	recs, err := s.fetcher.FetchLatest(ctx, cutoff)
	if err != nil {
		res.Error = err.Error()
		s.log.Warn().Err(err).Msg("fetch cycle failed")
		s.storeLast(res)
		return res
	}
	res.Fetched = len(recs)

	if len(recs) > 0 {
		inserted, err := s.catalog.Upsert(ctx, recs)
		if err != nil {
			res.Error = err.Error()
			s.log.Error().Err(err).Int("fetched", res.Fetched).Msg("upsert failed")
			s.storeLast(res)
			return res
		}
		res.Inserted = inserted
		res.Skipped = res.Fetched - inserted
	}

	if wm := s.advanceWatermark(recs); !wm.IsZero() {
		w := wm
		res.Watermark = &w
	}

	s.log.Info().
		Int("fetched", res.Fetched).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("ingest cycle complete")
	s.storeLast(res)
	return res
}

// Status implements domain.RunnerPort
func (s *Service) Status(ctx context.Context) (domain.Status, error) {
	total, err := s.catalog.Count(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	httpStatus, httpErr := s.fetcher.LastStatus()

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Status{
		PollerRunning:  s.running,
		IntervalSec:    int(s.cfg.Interval / time.Second),
		Keys:           s.fetcher.Keys(),
		TotalVideos:    total,
		Watermark:      s.watermark,
		LastHTTPStatus: httpStatus,
		LastHTTPError:  httpErr,
		LastCycle:      s.last,
	}, nil
}

// Watermark returns the current publish-time high water mark
func (s *Service) Watermark() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

func (s *Service) advanceWatermark(recs []vdomain.VideoRecord) time.Time {
	var newest time.Time
	for _, rec := range recs {
		if rec.PublishedAt != nil && rec.PublishedAt.After(newest) {
			newest = *rec.PublishedAt
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if newest.After(s.watermark) {
		s.watermark = newest
	}
	return s.watermark
}

func (s *Service) storeLast(res domain.CycleResult) {
	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
