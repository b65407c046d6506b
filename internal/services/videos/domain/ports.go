package domain

import "context"

// CatalogPort is the storage seam for the video corpus. Both backends
// (Postgres and ClickHouse) implement it; the service layer never sees which
type CatalogPort interface {
	// Upsert persists records that are not yet stored, keyed by VideoID.
	// Existing rows are left untouched. Returns how many rows were inserted
	Upsert(ctx context.Context, recs []VideoRecord) (int, error)

	// List returns a page of the corpus ordered by publish time
	List(ctx context.Context, q ListQuery) (PageResult, error)

	// Search returns a relevance-ranked page matching q.Query
	Search(ctx context.Context, q SearchQuery) (PageResult, error)

	// Count reports the corpus size
	Count(ctx context.Context) (int, error)
}
