package astro

import (
	"fmt"
	"time"

	"skycast/internal/geotime"
)

// Fixed offsets from the sunrise/sunset anchors, in seconds.
const (
	civilTwilightOffset        = 30 * 60
	nauticalTwilightOffset     = 60 * 60
	astronomicalTwilightOffset = 90 * 60
	goldenHourOffset           = 60 * 60
	blueHourNearOffset         = 15 * 60
	blueHourFarOffset          = 45 * 60
)

// milkyWayCoreHour approximates the local clock hour the galactic core
// becomes visible, per month, for mid-northern latitudes. This is a lookup
// table, not an ephemeris: it feeds UI-grade guidance, not navigation. The
// core is effectively lost to dawn in November and December.
var milkyWayCoreHour = map[time.Month]int{
	time.January:   5,
	time.February:  4,
	time.March:     2,
	time.April:     1,
	time.May:       23,
	time.June:      22,
	time.July:      21,
	time.August:    20,
	time.September: 20,
	time.October:   21,
	time.November:  7,
	time.December:  7,
}

// PhotoTimes is the fixed set of named event instants derived from one
// sunrise/sunset pair, all in UTC epoch seconds. Recomputed per request.
type PhotoTimes struct {
	Sunset                    int64 `json:"sunset"`
	Sunrise                   int64 `json:"sunrise"`
	CivilTwilightEnd          int64 `json:"civil_twilight_end"`
	NauticalTwilightEnd       int64 `json:"nautical_twilight_end"`
	AstronomicalTwilightEnd   int64 `json:"astronomical_twilight_end"`
	CivilTwilightStart        int64 `json:"civil_twilight_start"`
	NauticalTwilightStart     int64 `json:"nautical_twilight_start"`
	AstronomicalTwilightStart int64 `json:"astronomical_twilight_start"`
	MilkyWayCoreRise          int64 `json:"milky_way_core_rise"`
	GoldenHourStart           int64 `json:"golden_hour_start"`
	GoldenHourEnd             int64 `json:"golden_hour_end"`
	SunriseGoldenHourStart    int64 `json:"sunrise_golden_hour_start"`
	BlueHourStart             int64 `json:"blue_hour_start"`
	BlueHourEnd               int64 `json:"blue_hour_end"`
	SunriseBlueHourStart      int64 `json:"sunrise_blue_hour_start"`
	SunriseBlueHourEnd        int64 `json:"sunrise_blue_hour_end"`
}

// CalculatePhotoTimes derives twilight, golden hour, blue hour, and the
// Milky Way core rise from one sunrise and one sunset anchor. The timezone is
// needed twice: to interpret bare anchor strings and to place the core-rise
// instant on the local calendar.
func CalculatePhotoTimes(sunriseISO, sunsetISO, timezone string) (*PhotoTimes, error) {
	sunrise, ok := geotime.Resolve(sunriseISO, timezone)
	if !ok {
		return nil, fmt.Errorf("unparsable sunrise %q", sunriseISO)
	}
	sunset, ok := geotime.Resolve(sunsetISO, timezone)
	if !ok {
		return nil, fmt.Errorf("unparsable sunset %q", sunsetISO)
	}

	return &PhotoTimes{
		Sunset:                    sunset,
		Sunrise:                   sunrise,
		CivilTwilightEnd:          sunset + civilTwilightOffset,
		NauticalTwilightEnd:       sunset + nauticalTwilightOffset,
		AstronomicalTwilightEnd:   sunset + astronomicalTwilightOffset,
		CivilTwilightStart:        sunrise - civilTwilightOffset,
		NauticalTwilightStart:     sunrise - nauticalTwilightOffset,
		AstronomicalTwilightStart: sunrise - astronomicalTwilightOffset,
		MilkyWayCoreRise:          milkyWayCoreRise(sunset, timezone),
		GoldenHourStart:           sunset - goldenHourOffset,
		GoldenHourEnd:             sunrise + goldenHourOffset,
		SunriseGoldenHourStart:    sunrise - goldenHourOffset,
		BlueHourStart:             sunset + blueHourNearOffset,
		BlueHourEnd:               sunset + blueHourFarOffset,
		SunriseBlueHourStart:      sunrise - blueHourFarOffset,
		SunriseBlueHourEnd:        sunrise - blueHourNearOffset,
	}, nil
}

// milkyWayCoreRise builds an instant at the month's core-rise hour on the
// sunset's local calendar day. The core-rise event always belongs to the
// observing night that the sunset begins, so a result before sunset rolls
// forward one day.
func milkyWayCoreRise(sunsetTS int64, timezone string) int64 {
	loc := geotime.Location(timezone)
	sunset := time.Unix(sunsetTS, 0).In(loc)

	hour := milkyWayCoreHour[sunset.Month()]
	rise := time.Date(sunset.Year(), sunset.Month(), sunset.Day(), hour, 0, 0, 0, loc)
	if rise.Before(sunset) {
		rise = rise.AddDate(0, 0, 1)
	}
	return rise.Unix()
}
