package config

import (
	"strings"
	"time"

	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const (
	RefreshRateDefault    = 50
	RefreshRateMin        = 10
	RefreshRateMax        = 1000
	WaterfallWidthDefault = 300
	WaterfallWidthMin     = 100
	WaterfallWidthMax     = 4000
	LogLevelDefault       = "info"
)

func DefaultSettings() Settings {
	return Settings{
		Filters:        []string{filters.All},
		LazyUpdate:     true,
		RefreshRate:    RefreshRateDefault,
		WaterfallWidth: WaterfallWidthDefault,
		LogLevel:       LogLevelDefault,
	}
}

// NormaliseSettings clamps numeric settings and drops filter tags that are
// not known categories. Zero values fall back to defaults.
func NormaliseSettings(in Settings) Settings {
	out := in
	out.RefreshRate = clamp(in.RefreshRate, RefreshRateMin, RefreshRateMax, RefreshRateDefault)
	out.WaterfallWidth = clamp(
		in.WaterfallWidth,
		WaterfallWidthMin,
		WaterfallWidthMax,
		WaterfallWidthDefault,
	)
	out.Filters = normaliseFilters(in.Filters)
	out.LogLevel = strings.ToLower(strings.TrimSpace(in.LogLevel))
	if out.LogLevel == "" {
		out.LogLevel = LogLevelDefault
	}
	return out
}

// RefreshInterval is the lazy update period.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshRate) * time.Millisecond
}

func normaliseFilters(in []string) []string {
	tags := util.DedupeNonEmptyStrings(in)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(tag)
		if filters.Known(tag) {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return []string{filters.All}
	}
	return out
}

func clamp[T ~int | ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
