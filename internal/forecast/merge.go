package forecast

import "time"

// DefaultDiffThreshold is the disagreement (in percentage points) above which
// a provider diff is recorded per level.
const DefaultDiffThreshold = 20

const hourBucketLayout = "2006-01-02 15"

// HourBucket returns the UTC hour key used to align the two providers'
// series, e.g. "2024-06-01 20".
func HourBucket(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(hourBucketLayout)
}

// Merge aligns the primary hourly rows with the secondary per-hour samples
// and takes the worst case (maximum) value per cloud level, recording every
// disagreement above threshold. Under-forecasting cloud is the costlier error
// for a photographer, so the more overcast estimate always wins.
//
// An empty secondary map means the secondary source was unavailable; the
// primary series passes through unmodified with an empty summary.
func Merge(primary []HourlyCloudRow, secondary map[string]CloudSample, threshold int) ([]HourlyCloudRow, DiffSummary) {
	summary := DiffSummary{
		PerLevel: map[string]int{
			LevelTotal: 0,
			LevelLow:   0,
			LevelMid:   0,
			LevelHigh:  0,
		},
		Threshold: threshold,
	}

	if len(secondary) == 0 {
		return primary, summary
	}

	merged := make([]HourlyCloudRow, len(primary))
	for i, row := range primary {
		sample, ok := secondary[HourBucket(row.TS)]
		if !ok {
			merged[i] = row
			continue
		}
		merged[i] = mergeRow(row, sample, threshold, &summary)
	}

	return merged, summary
}

func mergeRow(row HourlyCloudRow, sample CloudSample, threshold int, summary *DiffSummary) HourlyCloudRow {
	row.SourceValues = &SourceValues{
		Primary:   CloudSample{Total: row.Total, Low: row.Low, Mid: row.Mid, High: row.High},
		Secondary: sample,
	}

	diffs := make(map[string]LevelDiff)
	row.Total = mergeLevel(LevelTotal, row.Total, sample.Total, threshold, diffs, summary)
	row.Low = mergeLevel(LevelLow, row.Low, sample.Low, threshold, diffs, summary)
	row.Mid = mergeLevel(LevelMid, row.Mid, sample.Mid, threshold, diffs, summary)
	row.High = mergeLevel(LevelHigh, row.High, sample.High, threshold, diffs, summary)

	if len(diffs) > 0 {
		row.ProviderDiff = diffs
		summary.RowsWithDifferences++
	}

	return row
}

// mergeLevel resolves one cloud level. Primary nulls are filled from the
// secondary; secondary nulls keep the primary value; when both are present
// the maximum wins and a diff is recorded if the gap exceeds threshold.
func mergeLevel(level string, primary, secondary *int, threshold int, diffs map[string]LevelDiff, summary *DiffSummary) *int {
	switch {
	case primary == nil && secondary == nil:
		return nil
	case primary == nil:
		v := *secondary
		return &v
	case secondary == nil:
		v := *primary
		return &v
	}

	pv, sv := *primary, *secondary
	selected := "primary"
	merged := pv
	if sv > pv {
		selected = "secondary"
		merged = sv
	}

	diff := pv - sv
	if diff < 0 {
		diff = -diff
	}
	if diff > threshold {
		diffs[level] = LevelDiff{
			Difference: diff,
			Primary:    pv,
			Secondary:  sv,
			Selected:   selected,
		}
		summary.PerLevel[level]++
	}

	return &merged
}
