package module

import "tubewatch/internal/platform/config"

// Options holds configuration settings for the videos module
type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	FuzzyMaxLen    int
	FuzzyThreshold float64
	FuzzyWindow    int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	vf := cfg.Prefix("CORE_VIDEOS_")
	return Options{
		DefaultPerPage: vf.MayInt("DEFAULT_PER_PAGE", 10),
		MaxPerPage:     vf.MayInt("MAX_PER_PAGE", 50),
		FuzzyMaxLen:    vf.MayInt("FUZZY_MAX_LEN", 4),
		FuzzyThreshold: vf.MayFloat("FUZZY_THRESHOLD", 0.18),
		FuzzyWindow:    vf.MayInt("FUZZY_WINDOW", 500),
	}
}
