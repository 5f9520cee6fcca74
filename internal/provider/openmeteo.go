package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"skycast/internal/forecast"
	"skycast/internal/geotime"
)

// Bounds on the requested forecast length, in hours.
const (
	MinForecastHours = 1
	MaxForecastHours = 168
)

// OpenMeteoClient is the primary provider: hourly cloud cover at four levels
// plus daily sunrise/sunset, with timestamps as bare local time in the
// location's own timezone.
type OpenMeteoClient struct {
	latitude  float64
	longitude float64
	client    *http.Client
}

func NewOpenMeteoClient(latitude, longitude float64) *OpenMeteoClient {
	return &OpenMeteoClient{
		latitude:  latitude,
		longitude: longitude,
		client:    newHTTPClient(),
	}
}

type openMeteoResponse struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
	Hourly               struct {
		Time          []string `json:"time"`
		CloudCover    []*int   `json:"cloud_cover"`
		CloudCoverLow []*int   `json:"cloud_cover_low"`
		CloudCoverMid []*int   `json:"cloud_cover_mid"`
		CloudCoverHgh []*int   `json:"cloud_cover_high"`
	} `json:"hourly"`
	Daily struct {
		Time    []string `json:"time"`
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

// Forecast fetches and normalizes one forecast. hours is clamped to
// [MinForecastHours, MaxForecastHours]. past_days=1 is always requested so
// that yesterday's sunset is available to the window selector shortly after
// midnight.
func (c *OpenMeteoClient) Forecast(ctx context.Context, hours int) (*forecast.SkyForecast, error) {
	hours = ClampHours(hours)

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", c.latitude))
	query.Set("longitude", fmt.Sprintf("%.6f", c.longitude))
	query.Set("hourly", "cloud_cover,cloud_cover_low,cloud_cover_mid,cloud_cover_high")
	query.Set("daily", "sunrise,sunset")
	query.Set("timezone", "auto")
	query.Set("forecast_hours", fmt.Sprintf("%d", hours))
	query.Set("forecast_days", fmt.Sprintf("%d", (hours+23)/24+1))
	query.Set("past_days", "1")

	endpoint := url.URL{
		Scheme:   "https",
		Host:     "api.open-meteo.com",
		Path:     "/v1/forecast",
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}

	resp, err := doWithRetry(ctx, c.client, req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo fetch: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}
	if len(payload.Hourly.Time) == 0 {
		return nil, fmt.Errorf("open-meteo hourly data missing")
	}

	return normalizeOpenMeteo(&payload), nil
}

// normalizeOpenMeteo converts the response's parallel column arrays into
// records. This happens exactly once, here; no downstream code ever sees the
// columnar shape. Hours with unparsable timestamps are skipped.
func normalizeOpenMeteo(payload *openMeteoResponse) *forecast.SkyForecast {
	sky := &forecast.SkyForecast{
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
		Timezone:     payload.Timezone,
		TimezoneAbbr: payload.TimezoneAbbreviation,
		FetchedAt:    time.Now(),
	}

	at := func(values []*int, i int) *int {
		if i >= len(values) || values[i] == nil {
			return nil
		}
		v := *values[i]
		return &v
	}

	for i, ts := range payload.Hourly.Time {
		epoch, ok := geotime.Resolve(ts, payload.Timezone)
		if !ok {
			continue
		}
		sky.Hourly = append(sky.Hourly, forecast.HourlyCloudRow{
			Time:  ts,
			TS:    epoch,
			Total: at(payload.Hourly.CloudCover, i),
			Low:   at(payload.Hourly.CloudCoverLow, i),
			Mid:   at(payload.Hourly.CloudCoverMid, i),
			High:  at(payload.Hourly.CloudCoverHgh, i),
		})
	}

	sky.Sunrises = anchorsFrom(payload.Daily.Sunrise, payload.Timezone)
	sky.Sunsets = anchorsFrom(payload.Daily.Sunset, payload.Timezone)

	return sky
}

func anchorsFrom(times []string, timezone string) []forecast.DailyAnchor {
	anchors := make([]forecast.DailyAnchor, 0, len(times))
	for _, ts := range times {
		epoch, ok := geotime.Resolve(ts, timezone)
		if !ok {
			continue
		}
		anchors = append(anchors, forecast.DailyAnchor{Time: ts, TS: epoch})
	}
	return anchors
}

// ClampHours bounds a requested forecast length to the supported range.
func ClampHours(hours int) int {
	if hours < MinForecastHours {
		return MinForecastHours
	}
	if hours > MaxForecastHours {
		return MaxForecastHours
	}
	return hours
}
