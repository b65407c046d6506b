package repo

import (
	"sort"

	"tubewatch/internal/core/similarity"
	"tubewatch/internal/services/videos/domain"
)

// relevance is the typo-tolerant score used by the substring tier and the
// fuzzy fallback: Ratcliff/Obershelp ratio of the folded query against the
// folded title plus description
func relevance(needle string, rec domain.VideoRecord) float64 {
	hay := rec.Title
	if rec.Description != "" {
		hay += " " + rec.Description
	}
	return similarity.Ratio(needle, similarity.Fold(hay))
}

// rankBySimilarity orders recs by relevance descending with publish time as
// the tiebreak in the requested direction. The input slice is not modified
func rankBySimilarity(recs []domain.VideoRecord, query string, sortDir domain.Sort) []domain.VideoRecord {
	needle := similarity.Fold(query)
	out := make([]domain.VideoRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := relevance(needle, out[i]), relevance(needle, out[j])
		if si != sj {
			return si > sj
		}
		return publishedBefore(out[i], out[j], sortDir)
	})
	return out
}

// FuzzyRank keeps recs whose relevance is at or above threshold, best first,
// publish-time tiebreak per sortDir. It backs the short-query fallback when
// exact matching finds nothing
func FuzzyRank(recs []domain.VideoRecord, query string, threshold float64, sortDir domain.Sort) []domain.VideoRecord {
	needle := similarity.Fold(query)
	if needle == "" {
		return nil
	}
	type scored struct {
		rec   domain.VideoRecord
		ratio float64
	}
	kept := make([]scored, 0, len(recs))
	for _, rec := range recs {
		if r := relevance(needle, rec); r >= threshold {
			kept = append(kept, scored{rec: rec, ratio: r})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ratio != kept[j].ratio {
			return kept[i].ratio > kept[j].ratio
		}
		return publishedBefore(kept[i].rec, kept[j].rec, sortDir)
	})
	out := make([]domain.VideoRecord, len(kept))
	for i, s := range kept {
		out[i] = s.rec
	}
	return out
}

// Page slices a full result set down to one page; out-of-range pages are empty
func Page(recs []domain.VideoRecord, page, perPage int) []domain.VideoRecord {
	start := (page - 1) * perPage
	if start >= len(recs) || start < 0 {
		return []domain.VideoRecord{}
	}
	end := start + perPage
	if end > len(recs) {
		end = len(recs)
	}
	return recs[start:end]
}

// publishedBefore reports whether a sorts ahead of b for the given direction;
// records without a publish time go last either way
func publishedBefore(a, b domain.VideoRecord, sortDir domain.Sort) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	case sortDir == domain.SortPublishedAsc:
		return a.PublishedAt.Before(*b.PublishedAt)
	default:
		return a.PublishedAt.After(*b.PublishedAt)
	}
}

// trigramThreshold is the length-adaptive similarity floor for the trigram
// predicate: short queries need a looser floor because trigram overlap
// shrinks with string length
func trigramThreshold(query string) float64 {
	switch n := len([]rune(query)); {
	case n <= 4:
		return 0.20
	case n <= 6:
		return 0.25
	default:
		return 0.30
	}
}
