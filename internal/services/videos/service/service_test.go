package service

import (
	"context"
	"testing"
	"time"

	"tubewatch/internal/services/videos/domain"
)

// fakeStorage is an in-memory repo.Storage for service-level tests
type fakeStorage struct {
	recs       []domain.VideoRecord
	searchHits []domain.VideoRecord
	lastList   domain.ListQuery
	lastSearch domain.SearchQuery
	windowed   int
}

func (f *fakeStorage) Upsert(ctx context.Context, recs []domain.VideoRecord) (int, error) {
	n := 0
	for _, rec := range recs {
		dup := false
		for _, have := range f.recs {
			if have.VideoID == rec.VideoID {
				dup = true
				break
			}
		}
		if !dup {
			f.recs = append(f.recs, rec)
			n++
		}
	}
	return n, nil
}

func (f *fakeStorage) List(ctx context.Context, q domain.ListQuery) ([]domain.VideoRecord, int, error) {
	f.lastList = q
	start := (q.Page - 1) * q.PerPage
	if start >= len(f.recs) {
		return nil, len(f.recs), nil
	}
	end := start + q.PerPage
	if end > len(f.recs) {
		end = len(f.recs)
	}
	return f.recs[start:end], len(f.recs), nil
}

func (f *fakeStorage) Search(ctx context.Context, q domain.SearchQuery) ([]domain.VideoRecord, int, error) {
	f.lastSearch = q
	return f.searchHits, len(f.searchHits), nil
}

func (f *fakeStorage) RecentWindow(ctx context.Context, limit int) ([]domain.VideoRecord, error) {
	f.windowed++
	if limit > len(f.recs) {
		limit = len(f.recs)
	}
	return f.recs[:limit], nil
}

func (f *fakeStorage) Count(ctx context.Context) (int, error) { return len(f.recs), nil }

func seed(n int) []domain.VideoRecord {
	out := make([]domain.VideoRecord, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		ts := base.Add(time.Duration(i) * time.Hour)
		out[i] = domain.VideoRecord{VideoID: string(rune('a' + i)), Title: "Cricket highlights", PublishedAt: &ts}
	}
	return out
}

func TestListClampsAndPaginates(t *testing.T) {
	fs := &fakeStorage{recs: seed(5)}
	svc := New(fs, Config{DefaultPerPage: 2, MaxPerPage: 3})

	out, err := svc.List(context.Background(), domain.ListQuery{Page: 0, PerPage: 99})
	if err != nil {
		t.Fatal(err)
	}
	if fs.lastList.Page != 1 || fs.lastList.PerPage != 3 {
		t.Fatalf("query not clamped: %+v", fs.lastList)
	}
	if out.Total != 5 || len(out.Items) != 3 {
		t.Fatalf("page shape wrong: total=%d items=%d", out.Total, len(out.Items))
	}
	if out.PrevPage != nil {
		t.Fatal("first page has no prev")
	}
	if out.NextPage == nil || *out.NextPage != 2 {
		t.Fatalf("want next=2, got %v", out.NextPage)
	}
}

func TestListLastPageHasNoNext(t *testing.T) {
	fs := &fakeStorage{recs: seed(4)}
	svc := New(fs, Config{DefaultPerPage: 2})

	out, err := svc.List(context.Background(), domain.ListQuery{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatal(err)
	}
	if out.NextPage != nil {
		t.Fatalf("last page must have nil next, got %v", *out.NextPage)
	}
	if out.PrevPage == nil || *out.PrevPage != 1 {
		t.Fatalf("want prev=1, got %v", out.PrevPage)
	}
}

func TestListEmptyStore(t *testing.T) {
	svc := New(&fakeStorage{}, Config{})
	out, err := svc.List(context.Background(), domain.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Total != 0 || out.Items == nil || len(out.Items) != 0 {
		t.Fatalf("empty store must yield empty non-nil items: %+v", out)
	}
	if out.NextPage != nil || out.PrevPage != nil {
		t.Fatal("empty result has no neighbors")
	}
}

func TestSearchUsesBackendHits(t *testing.T) {
	fs := &fakeStorage{recs: seed(3), searchHits: seed(2)}
	svc := New(fs, Config{})

	out, err := svc.Search(context.Background(), domain.SearchQuery{
		Query:     "  cricket  ",
		ListQuery: domain.ListQuery{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if fs.lastSearch.Query != "cricket" {
		t.Fatalf("query not trimmed: %q", fs.lastSearch.Query)
	}
	if out.Total != 2 || fs.windowed != 0 {
		t.Fatalf("exact hits must not trigger the fuzzy pass: total=%d windowed=%d", out.Total, fs.windowed)
	}
}

func TestSearchFuzzyFallbackOnShortQuery(t *testing.T) {
	fs := &fakeStorage{recs: seed(3)}
	svc := New(fs, Config{})

	out, err := svc.Search(context.Background(), domain.SearchQuery{
		Query:     "crik",
		ListQuery: domain.ListQuery{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if fs.windowed != 1 {
		t.Fatal("zero exact hits on a short query must trigger the fuzzy pass")
	}
	if out.Total != 3 || len(out.Items) != 3 {
		t.Fatalf("fuzzy pass should match the cricket titles: %+v", out)
	}
}

func TestSearchNoFuzzyForLongQueries(t *testing.T) {
	fs := &fakeStorage{recs: seed(3)}
	svc := New(fs, Config{})

	out, err := svc.Search(context.Background(), domain.SearchQuery{
		Query:     "basket weaving",
		ListQuery: domain.ListQuery{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if fs.windowed != 0 {
		t.Fatal("long queries never take the fuzzy path")
	}
	if out.Total != 0 || len(out.Items) != 0 {
		t.Fatalf("want empty result, got %+v", out)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	fs := &fakeStorage{}
	svc := New(fs, Config{})
	batch := seed(3)

	n, err := svc.Upsert(context.Background(), batch)
	if err != nil || n != 3 {
		t.Fatalf("first upsert: n=%d err=%v", n, err)
	}
	n, err = svc.Upsert(context.Background(), batch)
	if err != nil || n != 0 {
		t.Fatalf("second upsert must insert nothing: n=%d err=%v", n, err)
	}
}
