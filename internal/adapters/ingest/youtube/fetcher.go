package youtube

import (
	"context"
	"time"

	"tubewatch/internal/services/videos/domain"
)

// Fetcher adapts a Client to the ingest fetcher seam: search plus transform
// in one call
type Fetcher struct{ client *Client }

// NewFetcher wraps client
func NewFetcher(client *Client) *Fetcher { return &Fetcher{client: client} }

// FetchLatest fetches and transforms everything published after the cutoff
func (f *Fetcher) FetchLatest(ctx context.Context, publishedAfter time.Time) ([]domain.VideoRecord, error) {
	items, err := f.client.SearchLatest(ctx, publishedAfter)
	if err != nil {
		return nil, err
	}
	return Transform(items), nil
}

// LastStatus reports the most recent upstream HTTP status and error text
func (f *Fetcher) LastStatus() (int, string) { return f.client.LastStatus() }

// Keys reports the credential pool size
func (f *Fetcher) Keys() int { return f.client.Keys() }

// Close releases the client transport
func (f *Fetcher) Close() { f.client.Close() }
