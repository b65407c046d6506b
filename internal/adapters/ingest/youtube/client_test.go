package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "tubewatch/internal/platform/errors"
)

const sampleItem = `{
	"id": {"kind": "youtube#video", "videoId": "abc123"},
	"snippet": {
		"title": "Cricket highlights",
		"description": "best catches",
		"publishedAt": "2026-01-02T03:04:05Z",
		"channelId": "ch1",
		"channelTitle": "Sports",
		"thumbnails": {"default": {"url": "https://img/1.jpg", "width": 120, "height": 90}}
	}
}`

func newTestClient(t *testing.T, srvURL string, keys []string) *Client {
	t.Helper()
	c := NewClient(Options{
		BaseURL:     srvURL,
		Query:       "cricket",
		Keys:        keys,
		MaxRetries:  5,
		BackoffBase: time.Millisecond,
		Cooldown:    time.Hour,
	})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestSearchRotatesExhaustedKeys(t *testing.T) {
	var keysSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keysSeen = append(keysSeen, key)
		if len(keysSeen) <= 2 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
			return
		}
		w.Write([]byte(`{"items":[` + sampleItem + `]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1", "k2", "k3"})
	items, err := c.Search(context.Background(), "cricket", time.Time{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(items) != 1 || items[0].ID.VideoID != "abc123" {
		t.Fatalf("unexpected items: %+v", items)
	}

	want := []string{"k1", "k2", "k3"}
	if len(keysSeen) != len(want) {
		t.Fatalf("want 3 attempts, got %v", keysSeen)
	}
	for i, k := range want {
		if keysSeen[i] != k {
			t.Fatalf("attempt %d used %q, want %q", i, keysSeen[i], k)
		}
	}
	if c.rotator.Len() != 3 {
		t.Fatalf("cooling keys must stay pooled, got %d", c.rotator.Len())
	}
	if status, msg := c.LastStatus(); status != http.StatusOK || msg != "" {
		t.Fatalf("last status = %d %q, want 200", status, msg)
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"items":[` + sampleItem + `]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"})
	items, err := c.Search(context.Background(), "cricket", time.Time{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("want 2 attempts, got %d", hits)
	}
}

func TestSearchHardFailsOnClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid publishedAfter"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"})
	_, err := c.Search(context.Background(), "cricket", time.Time{})
	if err == nil {
		t.Fatal("400 must surface as an error")
	}
	if perr.CodeOf(err) != perr.ErrorCodeUpstream {
		t.Fatalf("want upstream code, got %v", perr.CodeOf(err))
	}
	if status, msg := c.LastStatus(); status != http.StatusBadRequest || msg != "invalid publishedAfter" {
		t.Fatalf("last status = %d %q", status, msg)
	}
}

func TestSearchNoKeysSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	items, err := c.Search(context.Background(), "cricket", time.Time{})
	if err != nil || items != nil {
		t.Fatalf("want nil, nil, got %v, %v", items, err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("no request may be made without credentials")
	}
}

func TestSearchExhaustsBudgetGracefully(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"})
	items, err := c.Search(context.Background(), "cricket", time.Time{})
	if err != nil {
		t.Fatalf("exhausted budget must not error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("want empty non-nil slice, got %v", items)
	}
	if atomic.LoadInt32(&hits) != 5 {
		t.Fatalf("want 5 attempts, got %d", hits)
	}
}

func TestSearchSetsPublishedAfterParam(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("publishedAfter")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"})
	cutoff := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	if _, err := c.Search(context.Background(), "cricket", cutoff); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got != "2026-01-02T02:04:05Z" {
		t.Fatalf("publishedAfter = %q, want UTC RFC3339", got)
	}
}
