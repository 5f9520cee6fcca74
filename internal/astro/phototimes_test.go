package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePhotoTimesOffsets(t *testing.T) {
	sunrise := time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)
	sunset := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	pt, err := CalculatePhotoTimes(sunrise.Format(time.RFC3339), sunset.Format(time.RFC3339), "UTC")
	require.NoError(t, err)

	assert.Equal(t, sunset.Unix(), pt.Sunset)
	assert.Equal(t, sunrise.Unix(), pt.Sunrise)

	assert.Equal(t, sunset.Unix()+30*60, pt.CivilTwilightEnd)
	assert.Equal(t, sunset.Unix()+60*60, pt.NauticalTwilightEnd)
	assert.Equal(t, sunset.Unix()+90*60, pt.AstronomicalTwilightEnd)
	assert.Equal(t, sunrise.Unix()-30*60, pt.CivilTwilightStart)
	assert.Equal(t, sunrise.Unix()-60*60, pt.NauticalTwilightStart)
	assert.Equal(t, sunrise.Unix()-90*60, pt.AstronomicalTwilightStart)

	assert.Equal(t, sunset.Unix()-3600, pt.GoldenHourStart)
	assert.Equal(t, sunrise.Unix()+3600, pt.GoldenHourEnd)
	assert.Equal(t, sunrise.Unix()-3600, pt.SunriseGoldenHourStart)

	assert.Equal(t, sunset.Unix()+15*60, pt.BlueHourStart)
	assert.Equal(t, sunset.Unix()+45*60, pt.BlueHourEnd)
	assert.Equal(t, sunrise.Unix()-45*60, pt.SunriseBlueHourStart)
	assert.Equal(t, sunrise.Unix()-15*60, pt.SunriseBlueHourEnd)
}

func TestCalculatePhotoTimesOrdering(t *testing.T) {
	sunrise := time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)
	sunset := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	pt, err := CalculatePhotoTimes(sunrise.Format(time.RFC3339), sunset.Format(time.RFC3339), "UTC")
	require.NoError(t, err)

	order := []int64{
		pt.AstronomicalTwilightStart,
		pt.NauticalTwilightStart,
		pt.CivilTwilightStart,
		pt.Sunrise,
		pt.Sunset,
		pt.CivilTwilightEnd,
		pt.NauticalTwilightEnd,
		pt.AstronomicalTwilightEnd,
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i], "instant %d out of order", i)
	}

	assert.GreaterOrEqual(t, pt.MilkyWayCoreRise, pt.Sunset)
}

func TestCalculatePhotoTimesBareLocalAnchors(t *testing.T) {
	// Anchors as bare local time, the primary provider's native format.
	loc, err := time.LoadLocation("Europe/Dublin")
	require.NoError(t, err)

	pt, err := CalculatePhotoTimes("2024-06-02T05:00", "2024-06-01T21:45", "Europe/Dublin")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 21, 45, 0, 0, loc).Unix(), pt.Sunset)
	assert.Equal(t, time.Date(2024, 6, 2, 5, 0, 0, 0, loc).Unix(), pt.Sunrise)
}

func TestMilkyWayCoreRiseSameEvening(t *testing.T) {
	// June: core hour 22, after a 20:00 sunset, so the same calendar day.
	sunset := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	rise := milkyWayCoreRise(sunset.Unix(), "UTC")
	assert.Equal(t, time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC).Unix(), rise)
}

func TestMilkyWayCoreRiseRollsPastMidnight(t *testing.T) {
	// November: core hour 7, before a 17:00 sunset, so the next morning.
	sunset := time.Date(2024, 11, 5, 17, 0, 0, 0, time.UTC)
	rise := milkyWayCoreRise(sunset.Unix(), "UTC")
	assert.Equal(t, time.Date(2024, 11, 6, 7, 0, 0, 0, time.UTC).Unix(), rise)
}

func TestMilkyWayCoreHourTableBounds(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		hour, ok := milkyWayCoreHour[month]
		require.True(t, ok, "missing month %s", month)
		assert.GreaterOrEqual(t, hour, 1)
		assert.LessOrEqual(t, hour, 23)
	}
}

func TestCalculatePhotoTimesUnparsableAnchor(t *testing.T) {
	_, err := CalculatePhotoTimes("garbage", "2024-06-01T20:00", "UTC")
	assert.Error(t, err)

	_, err = CalculatePhotoTimes("2024-06-02T04:00", "garbage", "UTC")
	assert.Error(t, err)
}
