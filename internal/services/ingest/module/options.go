package module

import (
	"time"

	"tubewatch/internal/platform/config"
)

// Options holds configuration settings for the ingest module
type Options struct {
	Query         string
	Keys          []string
	BaseURL       string
	Interval      time.Duration
	Cooldown      time.Duration
	PageSize      int
	MaxRetries    int
	PollerEnabled bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	inf := cfg.Prefix("CORE_INGEST_")
	return Options{
		Query:         inf.MayString("QUERY", "cricket"),
		Keys:          inf.MayCSV("YOUTUBE_API_KEYS"),
		BaseURL:       inf.MayString("BASE_URL", ""),
		Interval:      inf.MayDuration("INTERVAL", time.Minute),
		Cooldown:      inf.MayDuration("KEY_COOLDOWN", 10*time.Minute),
		PageSize:      inf.MayInt("PAGE_SIZE", 50),
		MaxRetries:    inf.MayInt("MAX_RETRIES", 5),
		PollerEnabled: inf.MayBool("POLLER_ENABLED", true),
	}
}
