// Package forecaster orchestrates one forecast lookup: fetch from both
// providers, merge, select the relevant night window, derive photography
// times, and rate the night. Each lookup is independent and synchronous; the
// hosting process decides concurrency and scheduling.
package forecaster

import (
	"context"
	"fmt"
	"log"
	"time"

	"skycast/internal/astro"
	"skycast/internal/forecast"
	"skycast/internal/provider"
)

// PrimaryProvider yields the hourly cloud series plus daily sun anchors. Its
// failure is fatal to the whole lookup.
type PrimaryProvider interface {
	Forecast(ctx context.Context, hours int) (*forecast.SkyForecast, error)
}

// SecondaryProvider yields the cross-validation cloud series keyed by UTC
// hour bucket. Its failure only skips the merge.
type SecondaryProvider interface {
	CloudByHour(ctx context.Context) (map[string]forecast.CloudSample, error)
}

// MoonProvider yields moon data, degrading to the unknown shape on failure.
type MoonProvider interface {
	Moon(ctx context.Context) forecast.MoonInfo
}

// Cache is the injected result cache (nil disables caching).
type Cache interface {
	Get(key string) (*Result, bool)
	Set(key string, value *Result)
}

// Result is the complete output of one lookup, handed to renderers as plain
// data.
type Result struct {
	GeneratedAt   time.Time                 `json:"generated_at"`
	Latitude      float64                   `json:"latitude"`
	Longitude     float64                   `json:"longitude"`
	Timezone      string                    `json:"timezone"`
	TimezoneAbbr  string                    `json:"timezone_abbr"`
	Hours         int                       `json:"hours"`
	Hourly        []forecast.HourlyCloudRow `json:"hourly"`
	DiffSummary   forecast.DiffSummary      `json:"provider_diff_summary"`
	SecondaryUsed bool                      `json:"secondary_used"`
	Window        astro.SelectedWindow      `json:"window"`
	Times         *astro.PhotoTimes         `json:"photo_times,omitempty"`
	Ratings       astro.Ratings             `json:"ratings"`
	Moon          forecast.MoonInfo         `json:"moon"`
	AvgTotalCloud float64                   `json:"avg_total_cloud"`
	AvgHighCloud  float64                   `json:"avg_high_cloud"`
}

type Config struct {
	Primary       PrimaryProvider
	Secondary     SecondaryProvider
	Moon          MoonProvider
	Cache         Cache
	DiffThreshold int
	DefaultHours  int
}

type Forecaster struct {
	primary   PrimaryProvider
	secondary SecondaryProvider
	moon      MoonProvider
	cache     Cache
	threshold int
	hours     int
	now       func() time.Time
}

func New(cfg Config) *Forecaster {
	threshold := cfg.DiffThreshold
	if threshold <= 0 {
		threshold = forecast.DefaultDiffThreshold
	}
	hours := cfg.DefaultHours
	if hours <= 0 {
		hours = 48
	}
	return &Forecaster{
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		moon:      cfg.Moon,
		cache:     cfg.Cache,
		threshold: threshold,
		hours:     provider.ClampHours(hours),
		now:       time.Now,
	}
}

// Lookup runs one full forecast computation. hours <= 0 uses the configured
// default; out-of-range values are clamped.
func (f *Forecaster) Lookup(ctx context.Context, hours int) (*Result, error) {
	if hours <= 0 {
		hours = f.hours
	}
	hours = provider.ClampHours(hours)

	key := fmt.Sprintf("forecast:%d", hours)
	if f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			return cached, nil
		}
	}

	sky, err := f.primary.Forecast(ctx, hours)
	if err != nil {
		return nil, fmt.Errorf("primary forecast: %w", err)
	}

	var secondaryByHour map[string]forecast.CloudSample
	secondaryUsed := false
	if f.secondary != nil {
		secondaryByHour, err = f.secondary.CloudByHour(ctx)
		if err != nil {
			log.Printf("Warning: secondary provider unavailable, skipping merge: %v", err)
			secondaryByHour = nil
		} else {
			secondaryUsed = len(secondaryByHour) > 0
		}
	}

	merged, summary := forecast.Merge(sky.Hourly, secondaryByHour, f.threshold)

	now := f.now().Unix()
	window := astro.SelectWindow(sky.Sunsets, sky.Sunrises, now)

	var times *astro.PhotoTimes
	if window.Complete() {
		times, err = astro.CalculatePhotoTimes(window.Sunrise.Time, window.Sunset.Time, sky.Timezone)
		if err != nil {
			// A window whose anchors cannot be re-parsed is treated like a
			// missing window; the renderer falls back to a basic display.
			log.Printf("Warning: photography times unavailable: %v", err)
			times = nil
		}
	}

	moon := forecast.MoonInfo{PhaseName: "Unknown"}
	if f.moon != nil {
		moon = f.moon.Moon(ctx)
	}

	avgTotal, avgHigh := nightAverages(merged, window)
	ratings := astro.Rate(avgTotal, avgHigh, moon.IlluminationOrZero(), moon.Moonset)

	result := &Result{
		GeneratedAt:   f.now(),
		Latitude:      sky.Latitude,
		Longitude:     sky.Longitude,
		Timezone:      sky.Timezone,
		TimezoneAbbr:  sky.TimezoneAbbr,
		Hours:         hours,
		Hourly:        merged,
		DiffSummary:   summary,
		SecondaryUsed: secondaryUsed,
		Window:        window,
		Times:         times,
		Ratings:       ratings,
		Moon:          moon,
		AvgTotalCloud: avgTotal,
		AvgHighCloud:  avgHigh,
	}

	if f.cache != nil {
		f.cache.Set(key, result)
	}

	return result, nil
}

// nightAverages computes the cloud averages feeding the rating engine over
// the selected night's rows, falling back to the whole series when no
// complete window exists. Nil levels are left out of their average.
func nightAverages(rows []forecast.HourlyCloudRow, window astro.SelectedWindow) (avgTotal, avgHigh float64) {
	var totalSum, highSum float64
	var totalCount, highCount int

	for _, row := range rows {
		if window.Complete() && (row.TS < window.Sunset.TS || row.TS > window.Sunrise.TS) {
			continue
		}
		if row.Total != nil {
			totalSum += float64(*row.Total)
			totalCount++
		}
		if row.High != nil {
			highSum += float64(*row.High)
			highCount++
		}
	}

	if totalCount > 0 {
		avgTotal = totalSum / float64(totalCount)
	}
	if highCount > 0 {
		avgHigh = highSum / float64(highCount)
	}
	return avgTotal, avgHigh
}
