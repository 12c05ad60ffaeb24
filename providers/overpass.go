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

// OverpassProvider adapts OpenStreetMap data through the Overpass API.
type OverpassProvider struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewOverpassProvider(endpoint string, client *http.Client, logger *zap.Logger) *OverpassProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &OverpassProvider{
		endpoint: endpoint,
		client:   client,
		logger:   logger.Named("overpass"),
	}
}

func (o *OverpassProvider) Name() string { return OSM }

func (o *OverpassProvider) Fetch(ctx context.Context, bounds types.Bounds, categories []string) ([]types.NormalizedRecord, error) {
	bbox := fmt.Sprintf("%f,%f,%f,%f",
		bounds.Southwest.Lat, bounds.Southwest.Lng,
		bounds.Northeast.Lat, bounds.Northeast.Lng)

	// Query nodes and ways with amenity/leisure/tourism tags inside the box.
	query := fmt.Sprintf(`[out:json][timeout:10];
(
  node["amenity"](%s);
  node["leisure"](%s);
  node["tourism"](%s);
  way["leisure"](%s);
);
out center 100;`, bbox, bbox, bbox, bbox)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Provider: OSM, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: OSM, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: OSM, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload types.OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Provider: OSM, Err: fmt.Errorf("decode response: %w", err)}
	}

	now := time.Now()
	var records []types.NormalizedRecord
	for _, el := range payload.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		records = append(records, types.NormalizedRecord{
			Provider:        OSM,
			ProviderPlaceID: fmt.Sprintf("%s/%d", el.Type, el.ID),
			Name:            name,
			Categories:      osmCategories(el.Tags),
			Latitude:        lat,
			Longitude:       lng,
			Address:         osmAddress(el.Tags),
			Description:     el.Tags["description"],
			Confidence:      0.6,
			Attribution: types.Attribution{
				Provider: OSM,
				Text:     "© OpenStreetMap contributors",
				URL:      "https://www.openstreetmap.org/copyright",
			},
			FetchedAt: now,
		})
	}

	o.logger.Debug("fetched elements", zap.Int("count", len(records)))
	return records, nil
}

func osmCategories(tags map[string]string) []string {
	var cats []string
	for _, key := range []string{"amenity", "leisure", "tourism", "sport"} {
		if v, ok := tags[key]; ok {
			for _, part := range strings.Split(v, ";") {
				if part = strings.TrimSpace(part); part != "" {
					cats = append(cats, strings.ToLower(part))
				}
			}
		}
	}
	return cats
}

func osmAddress(tags map[string]string) string {
	street := tags["addr:street"]
	num := tags["addr:housenumber"]
	city := tags["addr:city"]
	parts := make([]string, 0, 3)
	if street != "" {
		if num != "" {
			street = street + " " + num
		}
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}
