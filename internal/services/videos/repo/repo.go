// Package repo provides the video catalog repository implementations.
// Two backends exist: Postgres with full-text and trigram ranking, and
// ClickHouse with substring matching ranked in Go
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tubewatch/internal/modkit/repokit"
	perr "tubewatch/internal/platform/errors"
	"tubewatch/internal/services/videos/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the video catalog repository. List and Search return the
// page slice plus the total match count so the service can build pagination
type Storage interface {
	Upsert(ctx context.Context, recs []domain.VideoRecord) (int, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.VideoRecord, int, error)
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.VideoRecord, int, error)
	RecentWindow(ctx context.Context, limit int) ([]domain.VideoRecord, error)
	Count(ctx context.Context) (int, error)
}

const recordCols = `video_id, title, description, published_at, thumbnails, channel_id, channel_title`

// Upsert implements Storage. Rows are keyed by video_id and never overwritten;
// the returned count is how many rows were actually new
func (s *pg) Upsert(ctx context.Context, recs []domain.VideoRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO videos
		(video_id, title, description, published_at, thumbnails, channel_id, channel_title, raw) VALUES `)

	args := make([]any, 0, len(recs)*8)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		thumbs, err := marshalThumbs(rec.Thumbnails)
		if err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeJSON, "marshal thumbnails")
		}
		args = append(args,
			rec.VideoID, rec.Title, rec.Description, rec.PublishedAt,
			thumbs, rec.ChannelID, rec.ChannelTitle, rawOrNil(rec.Raw),
		)
	}
	sb.WriteString(` ON CONFLICT (video_id) DO NOTHING`)

	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "insert videos")
	}
	return int(tag.RowsAffected()), nil
}

// List implements Storage
func (s *pg) List(ctx context.Context, q domain.ListQuery) ([]domain.VideoRecord, int, error) {
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	where := "WHERE TRUE"
	if q.Channel != "" {
		where += " AND channel_title ILIKE '%' || " + arg(q.Channel) + " || '%'"
	}

	var total int
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM videos "+where, args...).Scan(&total); err != nil {
		return nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "count videos")
	}

	sql := "SELECT " + recordCols + " FROM videos " + where +
		" ORDER BY " + orderClause(q.Sort) +
		" LIMIT " + arg(q.PerPage) + " OFFSET " + arg((q.Page-1)*q.PerPage)

	recs, err := s.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Search implements Storage. Candidates match by full-text query, by trigram
// similarity above a length-adaptive floor, or by case-insensitive substring
// on title or description. Rank blends full-text rank with trigram similarity
// so misspelled queries still order sensibly; ties break on publish time in
// the requested direction
func (s *pg) Search(ctx context.Context, q domain.SearchQuery) ([]domain.VideoRecord, int, error) {
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	qp := arg(q.Query)
	thr := arg(trigramThreshold(q.Query))
	where := `WHERE (search_vec @@ websearch_to_tsquery('english', ` + qp + `)
		OR similarity(title, ` + qp + `) > ` + thr + `
		OR similarity(coalesce(description, ''), ` + qp + `) > ` + thr + `
		OR title ILIKE '%' || ` + qp + ` || '%'
		OR description ILIKE '%' || ` + qp + ` || '%')`
	if q.Channel != "" {
		where += " AND channel_title ILIKE '%' || " + arg(q.Channel) + " || '%'"
	}

	var total int
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM videos "+where, args...).Scan(&total); err != nil {
		return nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "count search")
	}

	score := `(0.6 * ts_rank(search_vec, websearch_to_tsquery('english', ` + qp + `))
		+ 0.2 * similarity(title, ` + qp + `)
		+ 0.2 * similarity(coalesce(description, ''), ` + qp + `))`

	sql := "SELECT " + recordCols + " FROM videos " + where +
		" ORDER BY " + score + " DESC, " + orderClause(q.Sort) +
		" LIMIT " + arg(q.PerPage) + " OFFSET " + arg((q.Page-1)*q.PerPage)

	recs, err := s.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// RecentWindow implements Storage; it feeds the in-process fuzzy fallback
func (s *pg) RecentWindow(ctx context.Context, limit int) ([]domain.VideoRecord, error) {
	sql := "SELECT " + recordCols + " FROM videos ORDER BY published_at DESC NULLS LAST, video_id LIMIT $1"
	return s.queryRecords(ctx, sql, limit)
}

// Count implements Storage
func (s *pg) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM videos").Scan(&n); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "count videos")
	}
	return n, nil
}

func (s *pg) queryRecords(ctx context.Context, sql string, args ...any) ([]domain.VideoRecord, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query videos")
	}
	defer rows.Close()

	var out []domain.VideoRecord
	for rows.Next() {
		var (
			rec    domain.VideoRecord
			thumbs []byte
		)
		if err := rows.Scan(
			&rec.VideoID, &rec.Title, &rec.Description, &rec.PublishedAt,
			&thumbs, &rec.ChannelID, &rec.ChannelTitle,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan video")
		}
		if len(thumbs) > 0 {
			if err := json.Unmarshal(thumbs, &rec.Thumbnails); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode thumbnails")
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func orderClause(s domain.Sort) string {
	if s == domain.SortPublishedAsc {
		return "published_at ASC NULLS LAST, video_id"
	}
	return "published_at DESC NULLS LAST, video_id"
}

func marshalThumbs(m map[string]domain.Thumbnail) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
