package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"skycast/internal/forecast"
	"skycast/internal/geotime"
)

const defaultUserAgent = "skycast/1.0 github.com/skycast"

// MetNoClient is the secondary provider: the MET Norway locationforecast
// feed, used only to cross-validate the primary's cloud estimates. Its
// timestamps are always UTC-qualified.
type MetNoClient struct {
	latitude  float64
	longitude float64
	userAgent string
	client    *http.Client
}

// NewMetNoClient builds the client. MET Norway rejects requests without an
// identifying User-Agent, so an empty userAgent falls back to a default.
func NewMetNoClient(latitude, longitude float64, userAgent string) *MetNoClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &MetNoClient{
		latitude:  latitude,
		longitude: longitude,
		userAgent: userAgent,
		client:    newHTTPClient(),
	}
}

type metNoResponse struct {
	Properties struct {
		Timeseries []struct {
			Time string `json:"time"`
			Data struct {
				Instant struct {
					Details struct {
						CloudAreaFraction     *float64 `json:"cloud_area_fraction"`
						CloudAreaFractionLow  *float64 `json:"cloud_area_fraction_low"`
						CloudAreaFractionMed  *float64 `json:"cloud_area_fraction_medium"`
						CloudAreaFractionHigh *float64 `json:"cloud_area_fraction_high"`
					} `json:"details"`
				} `json:"instant"`
			} `json:"data"`
		} `json:"timeseries"`
	} `json:"properties"`
}

// CloudByHour fetches the secondary cloud series keyed by UTC hour bucket,
// ready for the merge step. Timesteps with unparsable timestamps are skipped.
func (c *MetNoClient) CloudByHour(ctx context.Context) (map[string]forecast.CloudSample, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.4f", c.latitude))
	query.Set("lon", fmt.Sprintf("%.4f", c.longitude))

	endpoint := url.URL{
		Scheme:   "https",
		Host:     "api.met.no",
		Path:     "/weatherapi/locationforecast/2.0/compact",
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("met.no request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := doWithRetry(ctx, c.client, req)
	if err != nil {
		return nil, fmt.Errorf("met.no fetch: %w", err)
	}
	defer resp.Body.Close()

	var payload metNoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("met.no decode: %w", err)
	}
	if len(payload.Properties.Timeseries) == 0 {
		return nil, fmt.Errorf("met.no timeseries missing")
	}

	return normalizeMetNo(&payload), nil
}

func normalizeMetNo(payload *metNoResponse) map[string]forecast.CloudSample {
	byHour := make(map[string]forecast.CloudSample, len(payload.Properties.Timeseries))
	for _, step := range payload.Properties.Timeseries {
		epoch, ok := geotime.Resolve(step.Time, "UTC")
		if !ok {
			continue
		}
		details := step.Data.Instant.Details
		byHour[forecast.HourBucket(epoch)] = forecast.CloudSample{
			Total: pct(details.CloudAreaFraction),
			Low:   pct(details.CloudAreaFractionLow),
			Mid:   pct(details.CloudAreaFractionMed),
			High:  pct(details.CloudAreaFractionHigh),
		}
	}

	return byHour
}

func pct(fraction *float64) *int {
	if fraction == nil {
		return nil
	}
	v := int(math.Round(*fraction))
	return &v
}
