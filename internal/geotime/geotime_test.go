package geotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBareLocalTime(t *testing.T) {
	// A bare string must be read as wall-clock time in the named zone.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	want := time.Date(2024, 6, 1, 20, 0, 0, 0, loc).Unix()

	got, ok := Resolve("2024-06-01T20:00", "America/New_York")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = Resolve("2024-06-01T20:00:00", "America/New_York")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveExplicitOffsetWinsOverZone(t *testing.T) {
	// A UTC-qualified string keeps its offset regardless of the requested
	// timezone.
	want := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC).Unix()

	got, ok := Resolve("2024-06-01T20:00:00Z", "America/New_York")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = Resolve("2024-06-01T22:00:00+02:00", "Asia/Tokyo")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveUnknownZoneFallsBackToUTC(t *testing.T) {
	want := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC).Unix()

	got, ok := Resolve("2024-06-01T20:00", "Not/AZone")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveUnparsable(t *testing.T) {
	for _, input := range []string{"", "   ", "garbage", "2024-13-45T99:99", "20:00"} {
		_, ok := Resolve(input, "UTC")
		assert.False(t, ok, "input %q should not resolve", input)
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Not/AZone"))
	assert.Equal(t, "Europe/Dublin", Location("Europe/Dublin").String())
}
