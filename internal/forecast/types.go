// Package forecast holds the hourly cloud-cover data model and the
// two-provider merge. Provider responses arrive as parallel arrays; they are
// normalized into the record types here at the ingestion boundary, before any
// merge or selection logic runs.
package forecast

import "time"

// Cloud level names, used as keys in diff records and summaries.
const (
	LevelTotal = "total"
	LevelLow   = "low"
	LevelMid   = "mid"
	LevelHigh  = "high"
)

// CloudSample is one hour of cloud-cover percentages. A nil level means the
// provider did not report it.
type CloudSample struct {
	Total *int `json:"total"`
	Low   *int `json:"low"`
	Mid   *int `json:"mid"`
	High  *int `json:"high"`
}

// LevelDiff records a per-level disagreement between the two providers that
// exceeded the configured threshold. Selected names the provider whose value
// won the merge (the numerically worse one).
type LevelDiff struct {
	Difference int    `json:"difference"`
	Primary    int    `json:"primary"`
	Secondary  int    `json:"secondary"`
	Selected   string `json:"selected"`
}

// SourceValues keeps both providers' raw values for an hour where the
// secondary source aligned with the primary row.
type SourceValues struct {
	Primary   CloudSample `json:"primary"`
	Secondary CloudSample `json:"secondary"`
}

// HourlyCloudRow is one merged forecast hour. TS is UTC epoch seconds and is
// monotonically non-decreasing across a sorted row list. Rows are never
// mutated after the merge step.
type HourlyCloudRow struct {
	Time         string               `json:"time"`
	TS           int64                `json:"ts"`
	Total        *int                 `json:"total"`
	Low          *int                 `json:"low"`
	Mid          *int                 `json:"mid"`
	High         *int                 `json:"high"`
	SourceValues *SourceValues        `json:"source_values,omitempty"`
	ProviderDiff map[string]LevelDiff `json:"provider_diff,omitempty"`
}

// DailyAnchor is a single sunrise or sunset event: the provider's source
// string plus its resolved UTC epoch. Immutable once parsed.
type DailyAnchor struct {
	Time string `json:"time_str"`
	TS   int64  `json:"ts"`
}

// DiffSummary aggregates provider disagreements for one merge pass.
// RowsWithDifferences counts hours, not levels: an hour where several levels
// disagreed still counts once.
type DiffSummary struct {
	RowsWithDifferences int            `json:"rows_with_differences"`
	PerLevel            map[string]int `json:"per_level"`
	Threshold           int            `json:"threshold"`
}

// SkyForecast is the primary provider's normalized payload: merged-ready
// hourly rows plus the daily sunrise/sunset anchors (one per calendar day in
// the fetch window).
type SkyForecast struct {
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Timezone     string           `json:"timezone"`
	TimezoneAbbr string           `json:"timezone_abbr"`
	Hourly       []HourlyCloudRow `json:"hourly"`
	Sunrises     []DailyAnchor    `json:"sunrises"`
	Sunsets      []DailyAnchor    `json:"sunsets"`
	FetchedAt    time.Time        `json:"fetched_at"`
}

// MoonInfo is the astronomy provider's payload. When no API key is configured
// or the provider fails, the same shape is returned with a nil illumination
// and an "Unknown" phase so the rating engine always has well-formed input.
type MoonInfo struct {
	Illumination *int   `json:"moon_illumination"`
	PhaseName    string `json:"moon_phase_name"`
	Moonrise     string `json:"moonrise,omitempty"`
	Moonset      string `json:"moonset,omitempty"`
}

// IlluminationOrZero returns the illumination percentage, treating unknown
// moon data as a dark sky.
func (m MoonInfo) IlluminationOrZero() int {
	if m.Illumination == nil {
		return 0
	}
	return *m.Illumination
}
