package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	vdomain "tubewatch/internal/services/videos/domain"
)

type fakeFetcher struct {
	mu      sync.Mutex
	batches [][]vdomain.VideoRecord
	cutoffs []time.Time
	err     error
	calls   int
}

func (f *fakeFetcher) FetchLatest(ctx context.Context, after time.Time) ([]vdomain.VideoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, after)
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeFetcher) LastStatus() (int, string) { return 200, "" }
func (f *fakeFetcher) Keys() int                 { return 2 }
func (f *fakeFetcher) Close()                    {}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCatalog struct {
	mu   sync.Mutex
	seen map[string]struct{}
	err  error
}

func newFakeCatalog() *fakeCatalog { return &fakeCatalog{seen: map[string]struct{}{}} }

func (c *fakeCatalog) Upsert(ctx context.Context, recs []vdomain.VideoRecord) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	n := 0
	for _, rec := range recs {
		if _, ok := c.seen[rec.VideoID]; !ok {
			c.seen[rec.VideoID] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (c *fakeCatalog) List(ctx context.Context, q vdomain.ListQuery) (vdomain.PageResult, error) {
	return vdomain.PageResult{}, nil
}

func (c *fakeCatalog) Search(ctx context.Context, q vdomain.SearchQuery) (vdomain.PageResult, error) {
	return vdomain.PageResult{}, nil
}

func (c *fakeCatalog) Count(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen), nil
}

func at(ts time.Time) *time.Time { return &ts }

func TestCycleAdvancesWatermarkMonotonically(t *testing.T) {
	t1 := time.Now().UTC().Add(time.Hour)
	t2 := t1.Add(time.Hour)
	fetcher := &fakeFetcher{batches: [][]vdomain.VideoRecord{
		{{VideoID: "a", PublishedAt: at(t2)}, {VideoID: "b", PublishedAt: at(t1)}},
		{{VideoID: "c", PublishedAt: at(t1)}}, // older than the mark
	}}
	svc := New(fetcher, newFakeCatalog(), Config{})

	res := svc.Cycle(context.Background())
	if res.Inserted != 2 || res.Error != "" {
		t.Fatalf("first cycle: %+v", res)
	}
	if got := svc.Watermark(); !got.Equal(t2) {
		t.Fatalf("watermark = %v, want %v", got, t2)
	}

	svc.Cycle(context.Background())
	if got := svc.Watermark(); !got.Equal(t2) {
		t.Fatalf("watermark must not move backwards, got %v", got)
	}

	// second fetch must have used the first watermark as cutoff
	if !fetcher.cutoffs[1].Equal(t2) {
		t.Fatalf("cutoff = %v, want %v", fetcher.cutoffs[1], t2)
	}
}

func TestCycleCountsDuplicatesAsSkipped(t *testing.T) {
	ts := time.Now().UTC().Add(time.Hour)
	catalog := newFakeCatalog()
	fetcher := &fakeFetcher{batches: [][]vdomain.VideoRecord{
		{{VideoID: "a", PublishedAt: at(ts)}},
		{{VideoID: "a", PublishedAt: at(ts)}, {VideoID: "b", PublishedAt: at(ts)}},
	}}
	svc := New(fetcher, catalog, Config{})

	svc.Cycle(context.Background())
	res := svc.Cycle(context.Background())
	if res.Fetched != 2 || res.Inserted != 1 || res.Skipped != 1 {
		t.Fatalf("dup accounting wrong: %+v", res)
	}
}

func TestCycleFetchErrorIsContained(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	svc := New(fetcher, newFakeCatalog(), Config{})

	before := svc.Watermark()
	res := svc.Cycle(context.Background())
	if res.Error == "" {
		t.Fatal("fetch error must be reported on the result")
	}
	if !svc.Watermark().Equal(before) {
		t.Fatal("failed cycle must not move the watermark")
	}

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.LastCycle == nil || st.LastCycle.Error == "" {
		t.Fatalf("status must carry the failed cycle: %+v", st)
	}
}

func TestStatusSnapshot(t *testing.T) {
	ts := time.Now().UTC().Add(time.Hour)
	fetcher := &fakeFetcher{batches: [][]vdomain.VideoRecord{
		{{VideoID: "a", PublishedAt: at(ts)}},
	}}
	svc := New(fetcher, newFakeCatalog(), Config{Interval: 30 * time.Second})
	svc.Cycle(context.Background())

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.PollerRunning {
		t.Fatal("no poller started")
	}
	if st.IntervalSec != 30 || st.Keys != 2 || st.TotalVideos != 1 {
		t.Fatalf("snapshot wrong: %+v", st)
	}
	if st.LastHTTPStatus != 200 {
		t.Fatalf("want upstream 200, got %d", st.LastHTTPStatus)
	}
}

func TestPollerStartStop(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := New(fetcher, newFakeCatalog(), Config{Interval: 5 * time.Millisecond})
	p := NewPoller(svc)

	p.Start(context.Background())
	p.Start(context.Background()) // idempotent

	deadline := time.After(time.Second)
	for fetcher.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("poller never cycled twice")
		case <-time.After(time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("second stop must be a no-op: %v", err)
	}

	st, _ := svc.Status(context.Background())
	if st.PollerRunning {
		t.Fatal("stopped poller must not report running")
	}

	calls := fetcher.callCount()
	time.Sleep(20 * time.Millisecond)
	if fetcher.callCount() != calls {
		t.Fatal("poller kept cycling after stop")
	}
}
