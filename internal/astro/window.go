// Package astro derives photography timing and quality from sunrise/sunset
// anchors, cloud averages, and moon data. Everything here is a pure function
// of its inputs; nothing is cached or persisted.
package astro

import "skycast/internal/forecast"

// SelectedWindow is the single sunset-to-sunrise pair currently relevant for
// photography display. Either field may be nil near the edges of the fetch
// window. Computed fresh on every request relative to "now".
type SelectedWindow struct {
	Sunset  *forecast.DailyAnchor `json:"sunset"`
	Sunrise *forecast.DailyAnchor `json:"sunrise"`
}

// Complete reports whether both anchors are present, i.e. whether the
// photography time calculator can run at all.
func (w SelectedWindow) Complete() bool {
	return w.Sunset != nil && w.Sunrise != nil
}

// SelectWindow picks the sunset/sunrise pair that should anchor the display:
// last night's window when now still falls inside it (the viewer is checking
// results), otherwise tonight's (the viewer is planning). Picking a fixed
// "day 0" pair instead would break near midnight and near sunrise.
//
// Both anchor slices must be in chronological order.
func SelectWindow(sunsets, sunrises []forecast.DailyAnchor, now int64) SelectedWindow {
	var lastSunset, nextSunset *forecast.DailyAnchor
	for i := range sunsets {
		if sunsets[i].TS <= now {
			lastSunset = &sunsets[i]
		} else {
			nextSunset = &sunsets[i]
			break
		}
	}

	firstSunriseAfter := func(ts int64) *forecast.DailyAnchor {
		for i := range sunrises {
			if sunrises[i].TS > ts {
				return &sunrises[i]
			}
		}
		return nil
	}

	var sunriseAfterLast, sunriseAfterNext *forecast.DailyAnchor
	if lastSunset != nil {
		sunriseAfterLast = firstSunriseAfter(lastSunset.TS)
	}
	if nextSunset != nil {
		sunriseAfterNext = firstSunriseAfter(nextSunset.TS)
	}

	switch {
	case lastSunset != nil && sunriseAfterLast != nil &&
		now >= lastSunset.TS && now <= sunriseAfterLast.TS:
		// Inside last night's window.
		return SelectedWindow{Sunset: lastSunset, Sunrise: sunriseAfterLast}

	case nextSunset != nil:
		sunrise := sunriseAfterNext
		if sunrise == nil && sunriseAfterLast != nil && sunriseAfterLast.TS > nextSunset.TS {
			sunrise = sunriseAfterLast
		}
		return SelectedWindow{Sunset: nextSunset, Sunrise: sunrise}

	case sunriseAfterLast != nil:
		// No future sunset in the fetch window at all.
		return SelectedWindow{Sunset: lastSunset, Sunrise: sunriseAfterLast}
	}

	return SelectedWindow{}
}
