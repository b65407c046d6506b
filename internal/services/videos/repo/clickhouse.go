package repo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	perr "tubewatch/internal/platform/errors"
	"tubewatch/internal/platform/store"
	"tubewatch/internal/services/videos/domain"
)

// Candidate window bounds for the substring tier: matches are ranked
// in-process over the newest searchWindow rows; when nothing matches at all
// the newest broadenWindow rows get a similarity pass instead. Pages past the
// window are not reachable
const (
	searchWindow  = 500
	broadenWindow = 1000
)

type ch struct {
	conn store.Clickhouse

	// upMu keeps upsert batches from interleaving; MergeTree has no unique
	// constraint, so the existence pre-check and the inserts must run as one
	// critical section
	upMu sync.Mutex
}

// NewCH constructs the ClickHouse-backed catalog. Matching is substring-only
// (positionCaseInsensitive); relevance ordering happens in Go over a bounded
// window of the newest matches
func NewCH(conn store.Clickhouse) Storage { return &ch{conn: conn} }

// Upsert implements Storage. MergeTree has no unique constraint, so dedup is
// an existence check before insert; the mutex keeps concurrent batches (the
// poller and the manual fetch endpoint share one store) from both passing
// the check
func (s *ch) Upsert(ctx context.Context, recs []domain.VideoRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	s.upMu.Lock()
	defer s.upMu.Unlock()

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.VideoID)
	}
	existing, err := s.existingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, rec := range recs {
		if _, ok := existing[rec.VideoID]; ok {
			continue
		}
		thumbs := ""
		if len(rec.Thumbnails) > 0 {
			b, err := json.Marshal(rec.Thumbnails)
			if err != nil {
				return inserted, perr.Wrap(err, perr.ErrorCodeJSON, "marshal thumbnails")
			}
			thumbs = string(b)
		}
		err := s.conn.Exec(ctx, `
			INSERT INTO videos
				(video_id, title, description, published_at, thumbnails, channel_id, channel_title, raw)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.VideoID, rec.Title, rec.Description, rec.PublishedAt,
			thumbs, rec.ChannelID, rec.ChannelTitle, string(rec.Raw),
		)
		if err != nil {
			return inserted, perr.Wrap(err, perr.ErrorCodeDB, "insert video")
		}
		inserted++
	}
	return inserted, nil
}

// List implements Storage
func (s *ch) List(ctx context.Context, q domain.ListQuery) ([]domain.VideoRecord, int, error) {
	where, args := "WHERE 1", []any{}
	if q.Channel != "" {
		where += " AND positionCaseInsensitive(channel_title, ?) > 0"
		args = append(args, q.Channel)
	}

	total, err := s.count(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if q.Sort == domain.SortPublishedAsc {
		dir = "ASC"
	}
	sql := "SELECT " + recordCols + " FROM videos " + where +
		" ORDER BY published_at " + dir + " NULLS LAST, video_id LIMIT ? OFFSET ?"
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	recs, err := s.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Search implements Storage. Every whitespace-separated term must substring
// match title or description; the newest matches form the ranking candidates,
// and when no row matches at all the newest rows overall get a last-resort
// similarity pass instead. Ranking is the folded similarity ratio, computed
// in-process. A blank query has nothing to rank and is served as a plain
// listing so pagination happens in SQL, not against the candidate window
func (s *ch) Search(ctx context.Context, q domain.SearchQuery) ([]domain.VideoRecord, int, error) {
	if strings.TrimSpace(q.Query) == "" {
		return s.List(ctx, q.ListQuery)
	}

	where, args := termPredicate(q.Query, q.Channel)

	total, err := s.count(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT " + recordCols + " FROM videos " + where +
		" ORDER BY published_at DESC NULLS LAST, video_id LIMIT ?"
	recs, err := s.queryRecords(ctx, sql, append(args, searchWindow)...)
	if err != nil {
		return nil, 0, err
	}

	if len(recs) == 0 {
		bWhere, bArgs := termPredicate("", q.Channel)
		bSQL := "SELECT " + recordCols + " FROM videos " + bWhere +
			" ORDER BY published_at DESC NULLS LAST, video_id LIMIT ?"
		recs, err = s.queryRecords(ctx, bSQL, append(bArgs, broadenWindow)...)
		if err != nil {
			return nil, 0, err
		}
		total = len(recs)
	}

	recs = rankBySimilarity(recs, q.Query, q.Sort)
	return Page(recs, q.Page, q.PerPage), total, nil
}

// termPredicate builds the AND-across-terms substring predicate; a blank
// query matches everything
func termPredicate(query, channel string) (string, []any) {
	where, args := "WHERE 1", []any{}
	for _, term := range strings.Fields(query) {
		where += " AND (positionCaseInsensitive(title, ?) > 0 OR positionCaseInsensitive(description, ?) > 0)"
		args = append(args, term, term)
	}
	if channel != "" {
		where += " AND positionCaseInsensitive(channel_title, ?) > 0"
		args = append(args, channel)
	}
	return where, args
}

// RecentWindow implements Storage
func (s *ch) RecentWindow(ctx context.Context, limit int) ([]domain.VideoRecord, error) {
	sql := "SELECT " + recordCols + " FROM videos ORDER BY published_at DESC NULLS LAST, video_id LIMIT ?"
	return s.queryRecords(ctx, sql, limit)
}

// Count implements Storage
func (s *ch) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "WHERE 1")
}

func (s *ch) existingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.conn.Query(ctx, "SELECT DISTINCT video_id FROM videos WHERE video_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query existing ids")
	}
	defer rows.Close()

	out := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan id")
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (s *ch) count(ctx context.Context, where string, args ...any) (int, error) {
	rows, err := s.conn.Query(ctx, "SELECT count() FROM videos "+where, args...)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "count videos")
	}
	defer rows.Close()
	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeDB, "scan count")
		}
	}
	return int(n), rows.Err()
}

func (s *ch) queryRecords(ctx context.Context, sql string, args ...any) ([]domain.VideoRecord, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query videos")
	}
	defer rows.Close()

	var out []domain.VideoRecord
	for rows.Next() {
		var (
			rec    domain.VideoRecord
			thumbs string
		)
		if err := rows.Scan(
			&rec.VideoID, &rec.Title, &rec.Description, &rec.PublishedAt,
			&thumbs, &rec.ChannelID, &rec.ChannelTitle,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan video")
		}
		if thumbs != "" {
			if err := json.Unmarshal([]byte(thumbs), &rec.Thumbnails); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode thumbnails")
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
