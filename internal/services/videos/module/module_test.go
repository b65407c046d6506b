package module

import (
	"testing"

	"tubewatch/internal/modkit"
	"tubewatch/internal/platform/config"
	"tubewatch/internal/platform/testkit"
)

func TestNewPanicsWithoutStore(t *testing.T) {
	testkit.MustPanic(t, func() {
		New(modkit.Deps{Cfg: config.New()})
	})
}

func TestFromConfigDefaults(t *testing.T) {
	opts := FromConfig(config.New())
	testkit.MustEqual(t, opts.DefaultPerPage, 10)
	testkit.MustEqual(t, opts.MaxPerPage, 50)
	testkit.MustEqual(t, opts.FuzzyMaxLen, 4)
	testkit.MustEqual(t, opts.FuzzyThreshold, 0.18)
	testkit.MustEqual(t, opts.FuzzyWindow, 500)
}
