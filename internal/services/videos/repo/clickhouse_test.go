package repo

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"tubewatch/internal/platform/store"
	"tubewatch/internal/services/videos/domain"
)

// fakeCH is an in-memory store.Clickhouse that understands the repo's SQL
// shapes: the dedup pre-check answers from rows inserted so far, and every
// statement is recorded for assertions
type fakeCH struct {
	mu      sync.Mutex
	inserts map[string]int // video_id -> times written
	stmts   []chStmt

	// checkLag widens the pre-check/insert gap so interleaved batches
	// would double-write if nothing serialized them
	checkLag time.Duration
}

type chStmt struct {
	sql  string
	args []any
}

func newFakeCH() *fakeCH { return &fakeCH{inserts: map[string]int{}} }

func (f *fakeCH) record(sql string, args []any) {
	f.mu.Lock()
	f.stmts = append(f.stmts, chStmt{sql: sql, args: args})
	f.mu.Unlock()
}

func (f *fakeCH) Exec(ctx context.Context, sql string, args ...any) error {
	f.record(sql, args)
	if strings.Contains(sql, "INSERT INTO videos") {
		f.mu.Lock()
		f.inserts[args[0].(string)]++
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeCH) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	f.record(sql, args)
	switch {
	case strings.Contains(sql, "SELECT DISTINCT video_id"):
		f.mu.Lock()
		var ids []string
		for _, a := range args {
			if f.inserts[a.(string)] > 0 {
				ids = append(ids, a.(string))
			}
		}
		f.mu.Unlock()
		time.Sleep(f.checkLag)
		return &idRows{ids: ids}, nil
	case strings.Contains(sql, "count()"):
		f.mu.Lock()
		n := uint64(len(f.inserts))
		f.mu.Unlock()
		return &countRows{n: n}, nil
	default:
		return &idRows{}, nil
	}
}

func (f *fakeCH) Close() error { return nil }

type idRows struct {
	ids []string
	i   int
}

func (r *idRows) Next() bool { r.i++; return r.i <= len(r.ids) }
func (r *idRows) Scan(dst ...any) error {
	*(dst[0].(*string)) = r.ids[r.i-1]
	return nil
}
func (r *idRows) Err() error { return nil }
func (r *idRows) Close()     {}

type countRows struct {
	n    uint64
	done bool
}

func (r *countRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}
func (r *countRows) Scan(dst ...any) error {
	*(dst[0].(*uint64)) = r.n
	return nil
}
func (r *countRows) Err() error { return nil }
func (r *countRows) Close()     {}

// The poller and the manual fetch endpoint can upsert overlapping batches at
// the same time; both must not slip past the existence pre-check
func TestCHUpsertConcurrentBatchesWriteOnce(t *testing.T) {
	conn := newFakeCH()
	conn.checkLag = 20 * time.Millisecond
	s := NewCH(conn)

	rec := domain.VideoRecord{VideoID: "vid-1", Title: "Cricket highlights"}
	start := make(chan struct{})
	inserted := make([]int, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			n, err := s.Upsert(context.Background(), []domain.VideoRecord{rec})
			if err != nil {
				t.Errorf("upsert: %v", err)
			}
			inserted[i] = n
		}(i)
	}
	close(start)
	wg.Wait()

	if got := conn.inserts["vid-1"]; got != 1 {
		t.Fatalf("row written %d times, want exactly 1", got)
	}
	if inserted[0]+inserted[1] != 1 {
		t.Fatalf("inserted counts = %v, want exactly one new row across both batches", inserted)
	}
}

func TestCHUpsertSkipsExistingRows(t *testing.T) {
	conn := newFakeCH()
	s := NewCH(conn)

	batch := []domain.VideoRecord{{VideoID: "a"}, {VideoID: "b"}}
	if n, err := s.Upsert(context.Background(), batch); err != nil || n != 2 {
		t.Fatalf("first upsert: n=%d err=%v", n, err)
	}
	if n, err := s.Upsert(context.Background(), batch); err != nil || n != 0 {
		t.Fatalf("re-upsert must write nothing: n=%d err=%v", n, err)
	}
	if conn.inserts["a"] != 1 || conn.inserts["b"] != 1 {
		t.Fatalf("rows duplicated: %v", conn.inserts)
	}
}

// Blank queries have nothing to rank, so pagination must happen in SQL
// rather than by slicing the bounded candidate window
func TestCHSearchBlankQueryPaginatesInSQL(t *testing.T) {
	conn := newFakeCH()
	s := NewCH(conn)

	if _, _, err := s.Search(context.Background(), domain.SearchQuery{
		Query:     "   ",
		ListQuery: domain.ListQuery{Page: 3, PerPage: 20},
	}); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, st := range conn.stmts {
		if !strings.Contains(st.sql, "OFFSET ?") {
			continue
		}
		found = true
		n := len(st.args)
		if st.args[n-2] != 20 || st.args[n-1] != 40 {
			t.Fatalf("page args = %v, want LIMIT 20 OFFSET 40", st.args)
		}
	}
	if !found {
		t.Fatal("blank query must page with SQL LIMIT/OFFSET")
	}
}
