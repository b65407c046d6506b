// Package domain defines the types and interfaces for the videos service
package domain

import (
	"encoding/json"
	"time"
)

// Sort is the publish-time ordering requested by a caller
type Sort string

// Supported sort directions
const (
	SortPublishedDesc Sort = "published_desc"
	SortPublishedAsc  Sort = "published_asc"
)

// ParseSort maps a query string value to a Sort, defaulting to newest first
func ParseSort(s string) Sort {
	if s == string(SortPublishedAsc) {
		return SortPublishedAsc
	}
	return SortPublishedDesc
}

// Thumbnail is one entry of the size-name -> image map
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// VideoRecord is one ingested video. VideoID is the natural key for dedup;
// everything else is optional. Records are insert-only: re-ingesting the same
// VideoID is a no-op and stored fields are never overwritten
type VideoRecord struct {
	VideoID      string               `json:"video_id"`
	Title        string               `json:"title,omitempty"`
	Description  string               `json:"description,omitempty"`
	PublishedAt  *time.Time           `json:"published_at,omitempty"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails,omitempty"`
	ChannelID    string               `json:"channel_id,omitempty"`
	ChannelTitle string               `json:"channel_title,omitempty"`

	// Raw retains the full original source item for forward-compat and debug
	Raw json.RawMessage `json:"-"`
}

// ListQuery selects a page of the corpus without text matching
type ListQuery struct {
	Page    int
	PerPage int
	Channel string // case-insensitive substring filter on channel title
	Sort    Sort
}

// SearchQuery is a ListQuery plus free-text matching
type SearchQuery struct {
	Query string
	ListQuery
}

// PageResult is the pagination envelope both list and search return.
// NextPage/PrevPage are nil at the corpus edges
type PageResult struct {
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	NextPage *int          `json:"next_page"`
	PrevPage *int          `json:"prev_page"`
	Items    []VideoRecord `json:"items"`
}
