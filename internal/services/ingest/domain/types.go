// Package domain defines the types and interfaces for the ingest service
package domain

import "time"

// CycleResult summarizes one fetch-transform-upsert pass
type CycleResult struct {
	StartedAt time.Time  `json:"started_at"`
	Fetched   int        `json:"fetched"`
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Watermark *time.Time `json:"watermark,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Status is the ingest diagnostics snapshot the status endpoint returns
type Status struct {
	PollerRunning  bool         `json:"poller_running"`
	IntervalSec    int          `json:"interval_sec"`
	Keys           int          `json:"keys"`
	TotalVideos    int          `json:"total_videos"`
	Watermark      time.Time    `json:"watermark"`
	LastHTTPStatus int          `json:"last_http_status,omitempty"`
	LastHTTPError  string       `json:"last_http_error,omitempty"`
	LastCycle      *CycleResult `json:"last_cycle,omitempty"`
}
