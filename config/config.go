package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects every tunable the service reads from the environment.
// Resolved once at boot and passed by reference; handlers never read env vars.
type Config struct {
	Port       string
	JWTSecret  string
	CronSecret string
	RedisAddr  string

	GoogleAPIKey       string
	GoogleEndpoint     string
	FoursquareAPIKey   string
	FoursquareEndpoint string
	OverpassEndpoint   string
	ProviderTimeout    time.Duration

	// Per-provider cache TTLs. Commercial data is the most volatile, open map
	// data changes slowly, and the classifier layer outlives both.
	GoogleTTL     time.Duration
	FoursquareTTL time.Duration
	OSMTTL        time.Duration
	ClassifierTTL time.Duration

	DedupDistanceMeters float64

	InferenceEndpoint string
	InferenceAPIKey   string
	InferenceModel    string

	VoteRatePerMinute int
	VoteBurst         int

	// Centers warmed by POST /refresh, "lat,lng" pairs.
	WarmTiles []string
}

func Load() *Config {
	return &Config{
		Port:       envOr("PORT", "8080"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CronSecret: os.Getenv("CRON_SECRET"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),

		GoogleAPIKey:       os.Getenv("GOOGLE_PLACES_API_KEY"),
		GoogleEndpoint:     envOr("GOOGLE_PLACES_ENDPOINT", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
		FoursquareAPIKey:   os.Getenv("FOURSQUARE_API_KEY"),
		FoursquareEndpoint: envOr("FOURSQUARE_ENDPOINT", "https://api.foursquare.com/v3/places/search"),
		OverpassEndpoint:   envOr("OVERPASS_ENDPOINT", "https://overpass-api.de/api/interpreter"),
		ProviderTimeout:    envDuration("PROVIDER_TIMEOUT", 5*time.Second),

		GoogleTTL:     envDuration("GOOGLE_CACHE_TTL", 6*time.Hour),
		FoursquareTTL: envDuration("FOURSQUARE_CACHE_TTL", 12*time.Hour),
		OSMTTL:        envDuration("OSM_CACHE_TTL", 7*24*time.Hour),
		ClassifierTTL: envDuration("CLASSIFIER_TTL", 30*24*time.Hour),

		DedupDistanceMeters: envFloat("DEDUP_DISTANCE_METERS", 75),

		InferenceEndpoint: envOr("INFERENCE_ENDPOINT", "https://api.openai.com/v1"),
		InferenceAPIKey:   os.Getenv("INFERENCE_API_KEY"),
		InferenceModel:    envOr("INFERENCE_MODEL", "gpt-4o-mini"),

		VoteRatePerMinute: envInt("VOTE_RATE_PER_MINUTE", 10),
		VoteBurst:         envInt("VOTE_BURST", 5),

		WarmTiles: splitCSV(os.Getenv("WARM_TILES")),
	}
}

// ProviderTTL maps a provider name to its cache TTL.
func (c *Config) ProviderTTL(provider string) time.Duration {
	switch provider {
	case "google":
		return c.GoogleTTL
	case "foursquare":
		return c.FoursquareTTL
	case "osm":
		return c.OSMTTL
	default:
		return c.GoogleTTL
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
