package domain

import (
	"context"
	"time"

	vdomain "tubewatch/internal/services/videos/domain"
)

// FetcherPort abstracts the upstream video source. The production
// implementation wraps the rotating-key API client; tests substitute fakes
type FetcherPort interface {
	// FetchLatest returns transformed records published after the cutoff.
	// A zero cutoff means no lower bound. Retryable upstream trouble yields
	// an empty slice, not an error
	FetchLatest(ctx context.Context, publishedAfter time.Time) ([]vdomain.VideoRecord, error)

	// LastStatus reports the most recent upstream HTTP status and error text
	LastStatus() (int, string)

	// Keys reports the credential pool size
	Keys() int

	// Close releases transport resources
	Close()
}

// RunnerPort drives ingestion cycles; the HTTP layer and the poller share it
type RunnerPort interface {
	Cycle(ctx context.Context) CycleResult
	Status(ctx context.Context) (Status, error)
}
