package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"

	"skycast/internal/forecast"
)

// MoonClient fetches moon illumination and rise/set clock times from the
// ipgeolocation.io astronomy API. Moon data is optional context for the
// rating engine, so this client never returns an error: a missing API key or
// a failed request yields the same MoonInfo shape with nil fields and an
// "Unknown" phase.
type MoonClient struct {
	apiKey    string
	latitude  float64
	longitude float64
	client    *http.Client
}

func NewMoonClient(apiKey string, latitude, longitude float64) *MoonClient {
	return &MoonClient{
		apiKey:    apiKey,
		latitude:  latitude,
		longitude: longitude,
		client:    newHTTPClient(),
	}
}

type ipGeoAstronomyResponse struct {
	MoonPhase            string      `json:"moon_phase"`
	Moonrise             string      `json:"moonrise"`
	Moonset              string      `json:"moonset"`
	MoonIlluminationPerc json.Number `json:"moon_illumination_percentage"`
}

func unknownMoon() forecast.MoonInfo {
	return forecast.MoonInfo{PhaseName: "Unknown"}
}

// Moon returns the current moon data, degrading to the unknown shape on any
// failure.
func (c *MoonClient) Moon(ctx context.Context) forecast.MoonInfo {
	if strings.TrimSpace(c.apiKey) == "" {
		return unknownMoon()
	}

	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("lat", fmt.Sprintf("%.4f", c.latitude))
	query.Set("long", fmt.Sprintf("%.4f", c.longitude))

	endpoint := url.URL{
		Scheme:   "https",
		Host:     "api.ipgeolocation.io",
		Path:     "/astronomy",
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		log.Printf("Warning: astronomy request: %v", err)
		return unknownMoon()
	}

	resp, err := doWithRetry(ctx, c.client, req)
	if err != nil {
		log.Printf("Warning: astronomy fetch: %v", err)
		return unknownMoon()
	}
	defer resp.Body.Close()

	var payload ipGeoAstronomyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("Warning: astronomy decode: %v", err)
		return unknownMoon()
	}

	info := forecast.MoonInfo{
		PhaseName: phaseName(payload.MoonPhase),
		Moonrise:  clockOrEmpty(payload.Moonrise),
		Moonset:   clockOrEmpty(payload.Moonset),
	}

	// The API reports illumination as a signed percentage (negative while
	// waning); the rating engine only cares about magnitude.
	if raw, err := payload.MoonIlluminationPerc.Float64(); err == nil {
		v := int(math.Round(math.Abs(raw)))
		info.Illumination = &v
	}

	return info
}

// phaseName turns "WANING_GIBBOUS" into "Waning Gibbous".
func phaseName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}

	words := strings.Fields(strings.ReplaceAll(strings.ToLower(raw), "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// clockOrEmpty filters out the "-:-" placeholder the API uses on days the
// moon does not rise or set.
func clockOrEmpty(clock string) string {
	clock = strings.TrimSpace(clock)
	if clock == "" || strings.Contains(clock, "-") {
		return ""
	}
	return clock
}
