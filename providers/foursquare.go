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
	"go.uber.org/zap"
)

// FoursquareProvider adapts the Foursquare v3 place search API.
type FoursquareProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

func NewFoursquareProvider(endpoint, apiKey string, client *http.Client, logger *zap.Logger) *FoursquareProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &FoursquareProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
		logger:   logger.Named("foursquare"),
	}
}

func (f *FoursquareProvider) Name() string { return Foursquare }

func (f *FoursquareProvider) Fetch(ctx context.Context, bounds types.Bounds, categories []string) ([]types.NormalizedRecord, error) {
	params := url.Values{}
	params.Set("sw", fmt.Sprintf("%f,%f", bounds.Southwest.Lat, bounds.Southwest.Lng))
	params.Set("ne", fmt.Sprintf("%f,%f", bounds.Northeast.Lat, bounds.Northeast.Lng))
	params.Set("limit", "50")
	if len(categories) > 0 {
		params.Set("query", strings.Join(categories, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: Foursquare, Err: err}
	}
	req.Header.Set("Authorization", f.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: Foursquare, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: Foursquare, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload types.FoursquareSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Provider: Foursquare, Err: fmt.Errorf("decode response: %w", err)}
	}

	now := time.Now()
	records := make([]types.NormalizedRecord, 0, len(payload.Results))
	for _, p := range payload.Results {
		cats := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			cats = append(cats, strings.ToLower(c.Name))
		}
		records = append(records, types.NormalizedRecord{
			Provider:        Foursquare,
			ProviderPlaceID: p.FsqID,
			Name:            p.Name,
			Categories:      cats,
			Latitude:        p.Geocodes.Main.Latitude,
			Longitude:       p.Geocodes.Main.Longitude,
			Address:         p.Location.FormattedAddress,
			Description:     p.Description,
			Confidence:      0.8,
			Attribution: types.Attribution{
				Provider: Foursquare,
				Text:     "Powered by Foursquare",
				URL:      "https://foursquare.com",
			},
			FetchedAt: now,
		})
	}

	f.logger.Debug("fetched places", zap.Int("count", len(records)))
	return records, nil
}
