package service

import (
	"context"
	"sync"
	"time"
)

// Poller runs ingest cycles on a fixed interval until stopped
type Poller struct {
	svc *Service

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// NewPoller constructs a poller over svc
func NewPoller(svc *Service) *Poller {
	return &Poller{svc: svc}
}

// Start launches the polling loop. Calling Start on a running poller is a
// no-op; the first cycle fires immediately rather than one interval in
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.svc.setRunning(true)
	p.svc.log.Info().Dur("interval", p.svc.cfg.Interval).Msg("poller started")

	go p.run(ctx, p.done)
}

// Stop halts the loop and waits for the in-flight cycle to finish, bounded by
// ctx. Safe to call multiple times or on a never-started poller
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the upstream fetcher; idempotent
func (p *Poller) Close() {
	p.closeOnce.Do(func() { p.svc.fetcher.Close() })
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.svc.setRunning(false)

	t := time.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			p.svc.log.Info().Msg("poller stopped")
			return
		case <-t.C:
		}

		// cycle errors are contained, the loop keeps its cadence
		p.svc.Cycle(ctx)
		t.Reset(p.svc.cfg.Interval)
	}
}
