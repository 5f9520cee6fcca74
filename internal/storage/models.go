package storage

import (
	"time"

	"gorm.io/gorm"

	"skycast/internal/forecaster"
)

// ForecastSnapshot is one collected forecast, flattened for the history API
// and nightly stats. The full hourly series is deliberately not persisted;
// it is cheap to recompute and large to store.
type ForecastSnapshot struct {
	gorm.Model
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	// Location
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`

	// Selected night window (UTC epoch seconds; zero when absent)
	SunsetTS  int64 `json:"sunset_ts"`
	SunriseTS int64 `json:"sunrise_ts"`

	// Ratings
	SunsetRating   int `json:"sunset_rating"`
	SunriseRating  int `json:"sunrise_rating"`
	AstroRating    int `json:"astro_rating"`
	MilkyWayRating int `json:"milky_way_rating"`

	// Moon
	MoonIllumination int    `json:"moon_illumination"`
	MoonPhase        string `json:"moon_phase"`
	MoonInterference string `json:"moon_interference"`

	// Cloud inputs and merge outcome
	AvgTotalCloud       float64 `json:"avg_total_cloud"`
	AvgHighCloud        float64 `json:"avg_high_cloud"`
	HoursFetched        int     `json:"hours_fetched"`
	RowsWithDifferences int     `json:"rows_with_differences"`
	SecondaryUsed       bool    `json:"secondary_used"`
}

// NightStats summarizes one calendar day's snapshots.
type NightStats struct {
	Date            time.Time `json:"date"`
	BestAstroRating int       `json:"best_astro_rating"`
	AvgTotalCloud   float64   `json:"avg_total_cloud"`
	SnapshotCount   int64     `json:"snapshot_count"`
}

// SnapshotFromResult flattens a lookup result into its stored form.
func SnapshotFromResult(r *forecaster.Result) *ForecastSnapshot {
	snap := &ForecastSnapshot{
		Timestamp:           r.GeneratedAt,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		Timezone:            r.Timezone,
		SunsetRating:        r.Ratings.SunsetRating,
		SunriseRating:       r.Ratings.SunriseRating,
		AstroRating:         r.Ratings.AstroRating,
		MilkyWayRating:      r.Ratings.MilkyWayRating,
		MoonIllumination:    r.Moon.IlluminationOrZero(),
		MoonPhase:           r.Moon.PhaseName,
		MoonInterference:    r.Ratings.MoonInterference,
		AvgTotalCloud:       r.AvgTotalCloud,
		AvgHighCloud:        r.AvgHighCloud,
		HoursFetched:        r.Hours,
		RowsWithDifferences: r.DiffSummary.RowsWithDifferences,
		SecondaryUsed:       r.SecondaryUsed,
	}
	if r.Window.Sunset != nil {
		snap.SunsetTS = r.Window.Sunset.TS
	}
	if r.Window.Sunrise != nil {
		snap.SunriseTS = r.Window.Sunrise.TS
	}
	return snap
}
