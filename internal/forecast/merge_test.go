package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func row(ts int64, total, low, mid, high *int) HourlyCloudRow {
	return HourlyCloudRow{
		Time:  time.Unix(ts, 0).UTC().Format(time.RFC3339),
		TS:    ts,
		Total: total,
		Low:   low,
		Mid:   mid,
		High:  high,
	}
}

var hour0 = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC).Unix()

func TestHourBucket(t *testing.T) {
	assert.Equal(t, "2024-06-01 20", HourBucket(hour0))
	// Minutes within the hour land in the same bucket.
	assert.Equal(t, "2024-06-01 20", HourBucket(hour0+59*60))
	assert.Equal(t, "2024-06-01 21", HourBucket(hour0+3600))
}

func TestMergeWorstCaseWins(t *testing.T) {
	primary := []HourlyCloudRow{row(hour0, intp(30), intp(10), intp(20), intp(40))}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(50), Low: intp(5), Mid: intp(20), High: intp(90)},
	}

	merged, _ := Merge(primary, secondary, 20)
	require.Len(t, merged, 1)

	assert.Equal(t, 50, *merged[0].Total) // secondary worse
	assert.Equal(t, 10, *merged[0].Low)   // primary worse
	assert.Equal(t, 20, *merged[0].Mid)   // equal
	assert.Equal(t, 90, *merged[0].High)  // secondary worse
}

func TestMergeFillsPrimaryNulls(t *testing.T) {
	primary := []HourlyCloudRow{row(hour0, nil, intp(10), nil, nil)}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(70), Low: nil, Mid: nil, High: intp(15)},
	}

	merged, summary := Merge(primary, secondary, 20)
	require.Len(t, merged, 1)

	// primary null, secondary present: adopt secondary.
	assert.Equal(t, 70, *merged[0].Total)
	assert.Equal(t, 15, *merged[0].High)
	// secondary null, primary present: keep primary.
	assert.Equal(t, 10, *merged[0].Low)
	// both null stays null.
	assert.Nil(t, merged[0].Mid)
	// Fills are not disagreements.
	assert.Equal(t, 0, summary.RowsWithDifferences)
	assert.Nil(t, merged[0].ProviderDiff)
}

func TestMergeDiffCounting(t *testing.T) {
	// Exactly two levels differ by more than the threshold: the row counter
	// increments once, each level counter once.
	primary := []HourlyCloudRow{row(hour0, intp(10), intp(50), intp(30), intp(0))}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(45), Low: intp(55), Mid: intp(30), High: intp(40)},
	}

	merged, summary := Merge(primary, secondary, 20)

	assert.Equal(t, 1, summary.RowsWithDifferences)
	assert.Equal(t, 1, summary.PerLevel[LevelTotal])
	assert.Equal(t, 0, summary.PerLevel[LevelLow])
	assert.Equal(t, 0, summary.PerLevel[LevelMid])
	assert.Equal(t, 1, summary.PerLevel[LevelHigh])

	diff := merged[0].ProviderDiff
	require.Len(t, diff, 2)
	assert.Equal(t, LevelDiff{Difference: 35, Primary: 10, Secondary: 45, Selected: "secondary"}, diff[LevelTotal])
	assert.Equal(t, LevelDiff{Difference: 40, Primary: 0, Secondary: 40, Selected: "secondary"}, diff[LevelHigh])
}

func TestMergeDiffExactThresholdNotRecorded(t *testing.T) {
	primary := []HourlyCloudRow{row(hour0, intp(10), nil, nil, nil)}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(30)},
	}

	// Difference of exactly threshold is not "above threshold".
	merged, summary := Merge(primary, secondary, 20)
	assert.Equal(t, 0, summary.RowsWithDifferences)
	assert.Equal(t, 30, *merged[0].Total)
}

func TestMergePrimarySelectedOnTie(t *testing.T) {
	primary := []HourlyCloudRow{row(hour0, intp(80), nil, nil, nil)}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(10)},
	}

	merged, summary := Merge(primary, secondary, 20)
	assert.Equal(t, 80, *merged[0].Total)
	assert.Equal(t, "primary", merged[0].ProviderDiff[LevelTotal].Selected)
	assert.Equal(t, 1, summary.RowsWithDifferences)
}

func TestMergeUnalignedHourPassesThrough(t *testing.T) {
	primary := []HourlyCloudRow{
		row(hour0, intp(10), nil, nil, nil),
		row(hour0+3600, intp(20), nil, nil, nil),
	}
	secondary := map[string]CloudSample{
		HourBucket(hour0): {Total: intp(15)},
	}

	merged, _ := Merge(primary, secondary, 20)
	require.Len(t, merged, 2)
	assert.NotNil(t, merged[0].SourceValues)
	assert.Nil(t, merged[1].SourceValues)
	assert.Nil(t, merged[1].ProviderDiff)
	assert.Equal(t, 20, *merged[1].Total)
}

func TestMergeSecondaryUnavailable(t *testing.T) {
	primary := []HourlyCloudRow{row(hour0, intp(10), intp(20), intp(30), intp(40))}

	merged, summary := Merge(primary, nil, 20)
	assert.Equal(t, primary, merged)
	assert.Equal(t, 0, summary.RowsWithDifferences)
	assert.Equal(t, 20, summary.Threshold)

	merged, _ = Merge(primary, map[string]CloudSample{}, 20)
	assert.Equal(t, primary, merged)
}

func TestMergeIdempotent(t *testing.T) {
	primary := []HourlyCloudRow{
		row(hour0, intp(30), intp(10), nil, intp(40)),
		row(hour0+3600, nil, intp(80), intp(5), nil),
	}
	secondary := map[string]CloudSample{
		HourBucket(hour0):        {Total: intp(60), Low: nil, Mid: intp(50), High: intp(41)},
		HourBucket(hour0 + 3600): {Total: intp(25), Low: intp(20), Mid: nil, High: intp(0)},
	}

	merged1, summary1 := Merge(primary, secondary, 20)
	merged2, summary2 := Merge(primary, secondary, 20)
	assert.Equal(t, merged1, merged2)
	assert.Equal(t, summary1, summary2)
}
