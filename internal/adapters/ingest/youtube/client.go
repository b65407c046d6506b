// Package youtube provides a resilient client for the YouTube Data v3 search API
// with API-key rotation, quota cooldown, and exponential backoff
package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	perr "tubewatch/internal/platform/errors"
	"tubewatch/internal/platform/logger"
)

const (
	searchURLDefault   = "https://www.googleapis.com/youtube/v3/search"
	defaultTimeout     = 20 * time.Second
	defaultMaxRetries  = 5
	defaultBackoffBase = 1 * time.Second
	defaultBackoffCap  = 30 * time.Second
	defaultCooldown    = 10 * time.Minute
	defaultPageSize    = 50
)

// Options configures the Client
type Options struct {
	BaseURL string
	Query   string
	Timeout time.Duration

	// Keys is the credential pool; empty disables outbound fetch entirely
	Keys []string

	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Cooldown    time.Duration
	PageSize    int
}

// Client is a search client with key rotation and retry/backoff.
// Safe for concurrent use; the rotator and diagnostic state carry their own locks
type Client struct {
	http    *http.Client
	opts    Options
	rotator *KeyRotator
	log     logger.Logger

	// seams for tests
	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	// last-attempt diagnostics, last-write-wins
	mu         sync.Mutex
	lastStatus int
	lastError  string
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = searchURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = defaultBackoffBase
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = defaultBackoffCap
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		rotator: NewKeyRotator(o.Keys, o.Cooldown),
		log:     *logger.Named("youtube"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// SearchLatest fetches videos for the configured topic query published after
// the cutoff (zero time omits the cutoff). Retryable failures degrade to an
// empty result; only non-retryable upstream 4xx surface as errors
func (c *Client) SearchLatest(ctx context.Context, publishedAfter time.Time) ([]Item, error) {
	return c.Search(ctx, c.opts.Query, publishedAfter)
}

// Search is SearchLatest with an explicit topic query
func (c *Client) Search(ctx context.Context, query string, publishedAfter time.Time) ([]Item, error) {
	// no credentials: fetch is disabled, skip network I/O entirely
	if c.rotator.Len() == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.opts.PageSize))
	if !publishedAfter.IsZero() {
		params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	}

	backoff := c.opts.BackoffBase
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, ok := c.rotator.PopAvailable()
		if !ok {
			// whole pool is cooling down, wait out the backoff and retry
			c.setLast(0, "no api key available")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffCap)
			continue
		}
		params.Set("key", key)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "youtube new request failed")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.setLast(0, err.Error())
			c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("youtube transport error retrying")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffCap)
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		lat := c.now().Sub(start)

		c.log.Debug().
			Str("query", query).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", lat).
			Msg("youtube http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			var sr searchResponse
			if err := json.Unmarshal(body, &sr); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeUpstream, "youtube response decode failed")
			}
			c.setLast(resp.StatusCode, "")
			return decodeItems(sr.Items)

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			// quota or rate limit: cool this key down and try the next one
			msg := apiErrorMessage(body)
			c.setLast(resp.StatusCode, msg)
			c.rotator.MarkExhausted()
			c.log.Warn().Int("status", resp.StatusCode).Str("reason", msg).Dur("retry_in", backoff).Msg("youtube key exhausted rotating")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffCap)
			continue

		case resp.StatusCode >= 500:
			c.setLast(resp.StatusCode, apiErrorMessage(body))
			c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Dur("retry_in", backoff).Msg("youtube transient server error retrying")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffCap)
			continue

		default:
			// non-retryable client error, propagate
			msg := apiErrorMessage(body)
			c.setLast(resp.StatusCode, msg)
			return nil, perr.Newf(perr.ErrorCodeUpstream, "youtube rejected request with status %d: %s", resp.StatusCode, msg)
		}
	}

	// budget exhausted: no new data this cycle, not a hard failure
	return []Item{}, nil
}

// Keys reports the size of the credential pool, cooling keys included
func (c *Client) Keys() int {
	return c.rotator.Len()
}

// LastStatus returns the HTTP status and error string of the most recent attempt
func (c *Client) LastStatus() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus, c.lastError
}

// Close releases the underlying transport's idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) setLast(status int, msg string) {
	c.mu.Lock()
	c.lastStatus = status
	c.lastError = msg
	c.mu.Unlock()
}

// apiErrorMessage extracts the structured Google error message when present
func apiErrorMessage(body []byte) string {
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err == nil && sr.Error != nil && sr.Error.Message != "" {
		return sr.Error.Message
	}
	const tail = 256
	if len(body) > tail {
		body = body[:tail]
	}
	return string(body)
}

// nextBackoff doubles up to the ceiling
func nextBackoff(cur, ceil time.Duration) time.Duration {
	next := cur * 2
	if next > ceil {
		next = ceil
	}
	return next
}

// sleepCtx sleeps for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
