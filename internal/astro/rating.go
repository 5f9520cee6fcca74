package astro

import (
	"fmt"
	"strconv"
	"strings"
)

// Moon interference bands (illumination percent).
const (
	moonInterferenceHigh   = 30
	moonInterferenceMedium = 10
)

// Reference "astronomical dark" window as local clock minutes. This is a
// fixed constant and deliberately not derived from the computed twilight
// instants; the two definitions of "dark" coexist on purpose for behavioral
// parity with the system this replaces.
const (
	darkWindowStartMinutes = 23*60 + 42 // 23:42
	darkWindowEndMinutes   = 6 * 60     // 06:00
	minutesPerDay          = 24 * 60
)

// AstroWindow is the optimal astrophotography window as local clock times.
type AstroWindow struct {
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
	Quality       string  `json:"quality"`
}

// Ratings holds the five discrete photography quality scores plus moon
// context. Pure function output; no lifecycle beyond the request.
type Ratings struct {
	SunsetRating       int         `json:"sunset_rating"`
	SunriseRating      int         `json:"sunrise_rating"`
	AstroRating        int         `json:"astro_rating"`
	MilkyWayRating     int         `json:"milky_way_rating"`
	MoonInterference   string      `json:"moon_interference"`
	OptimalAstroWindow AstroWindow `json:"optimal_astro_window"`
}

// Rate scores sunrise/sunset color, astrophotography, and Milky Way quality
// from cloud-cover averages and moon data. moonset is a local "HH:MM" clock
// time and may be empty when the moon provider had nothing to say.
func Rate(avgTotalCloud, avgHighCloud float64, moonIllumination int, moonset string) Ratings {
	golden := goldenRating(avgTotalCloud, avgHighCloud)
	astro := astroRating(avgTotalCloud, moonIllumination)

	moonsetMinutes, moonsetKnown := clockMinutes(moonset)
	moonsetInDark := moonsetKnown && inDarkWindow(moonsetMinutes)

	milkyWay := astro
	if moonsetInDark && milkyWay < 5 {
		milkyWay++
	}

	return Ratings{
		SunsetRating:       golden,
		SunriseRating:      golden,
		AstroRating:        astro,
		MilkyWayRating:     milkyWay,
		MoonInterference:   moonInterference(moonIllumination),
		OptimalAstroWindow: optimalAstroWindow(avgTotalCloud, moonsetMinutes, moonsetInDark),
	}
}

// goldenRating applies the shared sunset/sunrise formula: cloud penalty by
// descending thresholds, then a bonus when high cloud is present without
// overall overcast. High cloud lit from below the horizon produces the most
// dramatic color.
func goldenRating(avgTotal, avgHigh float64) int {
	rating := 5
	switch {
	case avgTotal > 80:
		rating = 1
	case avgTotal > 60:
		rating = 2
	case avgTotal > 40:
		rating = 3
	case avgTotal > 20:
		rating = 4
	}

	if avgHigh > 20 && avgHigh < 60 && avgTotal < 50 && rating < 5 {
		rating++
	}

	return rating
}

func astroRating(avgTotal float64, moonIllumination int) int {
	rating := 5
	switch {
	case avgTotal > 70:
		rating = 1
	case avgTotal > 50:
		rating = 2
	case avgTotal > 30:
		rating = 3
	case avgTotal > 15:
		rating = 4
	}

	if moonIllumination > 80 {
		rating -= 2
	} else if moonIllumination > 50 {
		rating--
	}
	if rating < 1 {
		rating = 1
	}

	return rating
}

func moonInterference(illumination int) string {
	switch {
	case illumination > moonInterferenceHigh:
		return "high"
	case illumination > moonInterferenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// optimalAstroWindow starts from the fixed dark window and shifts its start
// to the moonset when the moon sets mid-window: the dark sky starts later but
// is less contaminated, which also bumps the quality one level (poor never
// bumps).
func optimalAstroWindow(avgTotal float64, moonsetMinutes int, moonsetInDark bool) AstroWindow {
	startMinutes := darkWindowStartMinutes
	if moonsetInDark {
		startMinutes = moonsetMinutes
	}

	duration := ((darkWindowEndMinutes-startMinutes)%minutesPerDay + minutesPerDay) % minutesPerDay

	quality := windowQuality(avgTotal)
	if moonsetInDark {
		switch quality {
		case "fair":
			quality = "good"
		case "good":
			quality = "excellent"
		}
	}

	return AstroWindow{
		StartTime:     formatClock(startMinutes),
		EndTime:       formatClock(darkWindowEndMinutes),
		DurationHours: float64(duration) / 60,
		Quality:       quality,
	}
}

func windowQuality(avgTotal float64) string {
	switch {
	case avgTotal < 10:
		return "excellent"
	case avgTotal < 25:
		return "good"
	case avgTotal < 50:
		return "fair"
	default:
		return "poor"
	}
}

// inDarkWindow tests a clock time of day against the dark window, which wraps
// midnight.
func inDarkWindow(minutes int) bool {
	return minutes >= darkWindowStartMinutes || minutes <= darkWindowEndMinutes
}

// clockMinutes parses "HH:MM" into minutes since midnight.
func clockMinutes(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
