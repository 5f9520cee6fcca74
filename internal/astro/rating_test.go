package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateClearSkyNewMoon(t *testing.T) {
	r := Rate(5, 5, 0, "")
	assert.Equal(t, 5, r.SunsetRating)
	assert.Equal(t, 5, r.SunriseRating)
	assert.Equal(t, 5, r.AstroRating)
	assert.Equal(t, 5, r.MilkyWayRating)
	assert.Equal(t, "low", r.MoonInterference)
}

func TestRateExampleScenario(t *testing.T) {
	// 15% total cloud with 40% high cloud at 10% moon: great color, great
	// astro, quiet moon.
	r := Rate(15, 40, 10, "")
	assert.Equal(t, 5, r.SunsetRating)
	assert.Equal(t, 5, r.SunriseRating)
	// 15 sits exactly on the >15 boundary, which does not trip it.
	assert.Equal(t, 5, r.AstroRating)
	assert.Equal(t, "low", r.MoonInterference)
}

func TestGoldenRatingThresholds(t *testing.T) {
	cases := []struct {
		avgTotal float64
		avgHigh  float64
		want     int
	}{
		{0, 0, 5},
		{20, 0, 5},
		{21, 0, 4},
		{40, 0, 4},
		{41, 0, 3},
		{60, 0, 3},
		{61, 0, 2},
		{80, 0, 2},
		{81, 0, 1},
		{100, 0, 1},
	}
	for _, tc := range cases {
		r := Rate(tc.avgTotal, tc.avgHigh, 0, "")
		assert.Equal(t, tc.want, r.SunsetRating, "avgTotal=%v", tc.avgTotal)
		assert.Equal(t, r.SunsetRating, r.SunriseRating, "sunrise and sunset share the formula")
	}
}

func TestGoldenRatingHighCloudBonus(t *testing.T) {
	// Scattered high cloud without overall overcast is what lights up.
	boosted := Rate(30, 40, 0, "")
	assert.Equal(t, 5, boosted.SunsetRating)

	// Bonus requires avgTotal < 50.
	noBonus := Rate(55, 40, 0, "")
	assert.Equal(t, 3, noBonus.SunsetRating)

	// avgHigh of exactly 20 or 60 does not qualify.
	assert.Equal(t, 4, Rate(30, 20, 0, "").SunsetRating)
	assert.Equal(t, 4, Rate(30, 60, 0, "").SunsetRating)

	// Bonus is capped at 5.
	assert.Equal(t, 5, Rate(10, 40, 0, "").SunsetRating)
}

func TestAstroRatingMoonPenalty(t *testing.T) {
	assert.Equal(t, 5, Rate(0, 0, 50, "").AstroRating)
	assert.Equal(t, 4, Rate(0, 0, 51, "").AstroRating)
	assert.Equal(t, 4, Rate(0, 0, 80, "").AstroRating)
	assert.Equal(t, 3, Rate(0, 0, 81, "").AstroRating)

	// Floor of 1 under both cloud and moon penalties.
	assert.Equal(t, 1, Rate(75, 0, 100, "").AstroRating)
}

func TestRatingMonotonicInCloud(t *testing.T) {
	// Holding everything else fixed, more cloud never raises a rating.
	prev := Rate(0, 0, 10, "")
	for total := 1.0; total <= 100; total++ {
		cur := Rate(total, 0, 10, "")
		assert.LessOrEqual(t, cur.SunsetRating, prev.SunsetRating, "total=%v", total)
		assert.LessOrEqual(t, cur.SunriseRating, prev.SunriseRating, "total=%v", total)
		assert.LessOrEqual(t, cur.AstroRating, prev.AstroRating, "total=%v", total)
		prev = cur
	}
}

func TestMoonInterferenceBands(t *testing.T) {
	assert.Equal(t, "low", Rate(0, 0, 0, "").MoonInterference)
	assert.Equal(t, "low", Rate(0, 0, 10, "").MoonInterference)
	assert.Equal(t, "medium", Rate(0, 0, 11, "").MoonInterference)
	assert.Equal(t, "medium", Rate(0, 0, 30, "").MoonInterference)
	assert.Equal(t, "high", Rate(0, 0, 31, "").MoonInterference)
	assert.Equal(t, "high", Rate(0, 0, 100, "").MoonInterference)
}

func TestMilkyWayMoonsetBonus(t *testing.T) {
	// Moonset inside the dark window frees the rest of the night.
	r := Rate(20, 0, 40, "00:30")
	assert.Equal(t, 4, r.AstroRating)
	assert.Equal(t, 5, r.MilkyWayRating)

	// Moonset during the evening does not help.
	r = Rate(20, 0, 40, "21:00")
	assert.Equal(t, 4, r.MilkyWayRating)

	// Without moonset data the rating matches astro.
	r = Rate(20, 0, 40, "")
	assert.Equal(t, r.AstroRating, r.MilkyWayRating)

	// Capped at 5.
	r = Rate(0, 0, 0, "00:30")
	assert.Equal(t, 5, r.MilkyWayRating)
}

func TestOptimalAstroWindowDefault(t *testing.T) {
	w := Rate(5, 0, 0, "").OptimalAstroWindow
	assert.Equal(t, "23:42", w.StartTime)
	assert.Equal(t, "06:00", w.EndTime)
	assert.InDelta(t, 6.3, w.DurationHours, 0.001)
	assert.Equal(t, "excellent", w.Quality)
}

func TestOptimalAstroWindowMoonsetShift(t *testing.T) {
	// Moon sets mid-window: the start shifts to moonset and the shorter,
	// cleaner window is rated one level up.
	w := Rate(30, 0, 80, "01:30").OptimalAstroWindow
	assert.Equal(t, "01:30", w.StartTime)
	assert.Equal(t, "06:00", w.EndTime)
	assert.InDelta(t, 4.5, w.DurationHours, 0.001)
	assert.Equal(t, "good", w.Quality) // fair bumped

	w = Rate(15, 0, 80, "00:00").OptimalAstroWindow
	assert.Equal(t, "00:00", w.StartTime)
	assert.InDelta(t, 6.0, w.DurationHours, 0.001)
	assert.Equal(t, "excellent", w.Quality) // good bumped
}

func TestOptimalAstroWindowPoorNeverBumped(t *testing.T) {
	w := Rate(70, 0, 80, "01:30").OptimalAstroWindow
	assert.Equal(t, "poor", w.Quality)
}

func TestOptimalAstroWindowLateMoonset(t *testing.T) {
	// A moonset just inside the window's first minutes still shifts it.
	w := Rate(30, 0, 80, "23:50").OptimalAstroWindow
	assert.Equal(t, "23:50", w.StartTime)
	assert.InDelta(t, 6.0+10.0/60.0, w.DurationHours, 0.001)
}

func TestOptimalAstroWindowQualityLevels(t *testing.T) {
	assert.Equal(t, "excellent", Rate(9, 0, 0, "").OptimalAstroWindow.Quality)
	assert.Equal(t, "good", Rate(10, 0, 0, "").OptimalAstroWindow.Quality)
	assert.Equal(t, "fair", Rate(25, 0, 0, "").OptimalAstroWindow.Quality)
	assert.Equal(t, "poor", Rate(50, 0, 0, "").OptimalAstroWindow.Quality)
}

func TestClockMinutes(t *testing.T) {
	m, ok := clockMinutes("23:42")
	require.True(t, ok)
	assert.Equal(t, 23*60+42, m)

	m, ok = clockMinutes("00:00")
	require.True(t, ok)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "25:00", "12:60", "noon", "12", "-1:30"} {
		_, ok = clockMinutes(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestRateIdempotent(t *testing.T) {
	r1 := Rate(33, 25, 64, "02:15")
	r2 := Rate(33, 25, 64, "02:15")
	assert.Equal(t, r1, r2)
}
