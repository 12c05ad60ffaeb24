package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/utils"
	"go.uber.org/zap"
)

// GoogleProvider adapts the Google Places nearby-search API.
type GoogleProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

func NewGoogleProvider(endpoint, apiKey string, client *http.Client, logger *zap.Logger) *GoogleProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
		logger:   logger.Named("google"),
	}
}

func (g *GoogleProvider) Name() string { return Google }

func (g *GoogleProvider) Fetch(ctx context.Context, bounds types.Bounds, categories []string) ([]types.NormalizedRecord, error) {
	center := bounds.Center()

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", fmt.Sprintf("%d", boundsRadiusMeters(bounds)))
	params.Set("key", g.apiKey)
	if len(categories) > 0 {
		// Nearby search accepts a single type; use the first category and
		// keep the rest for post-filtering downstream.
		params.Set("type", categories[0])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: Google, Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: Google, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: Google, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload types.GooglePlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Provider: Google, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, &Error{Provider: Google, Err: fmt.Errorf("upstream status %s: %s", payload.Status, payload.ErrorMessage)}
	}

	now := time.Now()
	records := make([]types.NormalizedRecord, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.BusinessStatus != nil && *r.BusinessStatus == "CLOSED_PERMANENTLY" {
			continue
		}
		rec := types.NormalizedRecord{
			Provider:        Google,
			ProviderPlaceID: r.PlaceID,
			Name:            r.Name,
			Categories:      normalizeGoogleTypes(r.Types),
			Latitude:        r.Geometry.Location.Lat,
			Longitude:       r.Geometry.Location.Lng,
			Confidence:      0.9,
			Attribution: types.Attribution{
				Provider: Google,
				Text:     "Powered by Google",
				URL:      "https://maps.google.com",
			},
			FetchedAt: now,
		}
		if r.Vicinity != nil {
			rec.Address = *r.Vicinity
		}
		if r.EditorialSummary != nil {
			rec.Description = r.EditorialSummary.Overview
		}
		records = append(records, rec)
	}

	g.logger.Debug("fetched nearby places", zap.Int("count", len(records)))
	return records, nil
}

// normalizeGoogleTypes drops Google's structural types that say nothing about
// what a place is.
func normalizeGoogleTypes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		switch t {
		case "point_of_interest", "establishment", "premise", "geocode":
			continue
		}
		out = append(out, strings.ToLower(t))
	}
	return out
}

// boundsRadiusMeters approximates half the viewport diagonal, clamped to the
// API's 50km ceiling.
func boundsRadiusMeters(b types.Bounds) int {
	d := utils.HaversineMeters(b.Southwest.Lat, b.Southwest.Lng, b.Northeast.Lat, b.Northeast.Lng) / 2
	if d < 100 {
		d = 100
	}
	if d > 50000 {
		d = 50000
	}
	return int(d)
}
