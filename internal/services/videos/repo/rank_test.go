package repo

import (
	"testing"
	"time"

	"tubewatch/internal/services/videos/domain"
)

func rec(id, title string, published time.Time) domain.VideoRecord {
	return domain.VideoRecord{VideoID: id, Title: title, PublishedAt: &published}
}

func ids(recs []domain.VideoRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.VideoID
	}
	return out
}

func TestRankBySimilarityOrdersByRatio(t *testing.T) {
	now := time.Now()
	recs := []domain.VideoRecord{
		rec("far", "quantum theory", now),
		rec("close", "cricket highlights of the whole long season reviewed", now),
		rec("closer", "crickets", now),
	}
	got := ids(rankBySimilarity(recs, "cricket", domain.SortPublishedDesc))
	if got[0] != "closer" || got[2] != "far" {
		t.Fatalf("ratio ordering wrong: %v", got)
	}
}

func TestRankBySimilarityTiebreakFollowsSort(t *testing.T) {
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []domain.VideoRecord{
		rec("old", "cricket", old),
		rec("new", "cricket", old.Add(24*time.Hour)),
	}
	got := ids(rankBySimilarity(recs, "cricket", domain.SortPublishedDesc))
	if got[0] != "new" {
		t.Fatalf("desc tiebreak: newer must win, got %v", got)
	}
	got = ids(rankBySimilarity(recs, "cricket", domain.SortPublishedAsc))
	if got[0] != "old" {
		t.Fatalf("asc tiebreak: older must win, got %v", got)
	}
}

func TestRankBySimilarityNilPublishedLast(t *testing.T) {
	now := time.Now()
	recs := []domain.VideoRecord{
		{VideoID: "undated", Title: "cricket"},
		rec("dated", "cricket", now),
	}
	got := ids(rankBySimilarity(recs, "cricket", domain.SortPublishedDesc))
	if got[0] != "dated" {
		t.Fatalf("undated records must sort last, got %v", got)
	}
}

func TestFuzzyRankFiltersAndOrders(t *testing.T) {
	now := time.Now()
	recs := []domain.VideoRecord{
		rec("far", "quantum theory", now),
		rec("close", "Cricket highlights", now),
		rec("closer", "crickets", now),
	}
	got := ids(FuzzyRank(recs, "crik", 0.18, domain.SortPublishedDesc))
	if len(got) != 2 {
		t.Fatalf("want 2 survivors, got %v", got)
	}
	if got[0] != "closer" {
		t.Fatalf("best ratio must come first, got %v", got)
	}
}

func TestFuzzyRankEmptyQuery(t *testing.T) {
	recs := []domain.VideoRecord{rec("a", "t", time.Now())}
	if got := FuzzyRank(recs, "   ", 0.1, domain.SortPublishedDesc); len(got) != 0 {
		t.Fatalf("blank query must match nothing, got %v", got)
	}
}

func TestPageBounds(t *testing.T) {
	now := time.Now()
	recs := []domain.VideoRecord{rec("a", "", now), rec("b", "", now), rec("c", "", now)}

	if got := Page(recs, 1, 2); len(got) != 2 || got[0].VideoID != "a" {
		t.Fatalf("page 1: %v", ids(got))
	}
	if got := Page(recs, 2, 2); len(got) != 1 || got[0].VideoID != "c" {
		t.Fatalf("page 2: %v", ids(got))
	}
	if got := Page(recs, 3, 2); len(got) != 0 {
		t.Fatalf("past-the-end page must be empty, got %v", ids(got))
	}
}

func TestTrigramThresholdSchedule(t *testing.T) {
	cases := []struct {
		q    string
		want float64
	}{
		{"crik", 0.20},
		{"cricke", 0.25},
		{"crickets", 0.30},
	}
	for _, tc := range cases {
		if got := trigramThreshold(tc.q); got != tc.want {
			t.Errorf("trigramThreshold(%q) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestTermPredicateSplitsTerms(t *testing.T) {
	where, args := termPredicate("cricket  highlights", "Sports")
	if len(args) != 5 {
		t.Fatalf("want 2 terms doubled plus channel, got %d args: %v", len(args), args)
	}
	if where == "WHERE 1" {
		t.Fatal("predicate must constrain matches")
	}

	where, args = termPredicate("", "")
	if where != "WHERE 1" || len(args) != 0 {
		t.Fatalf("blank query must match all: %q %v", where, args)
	}
}
