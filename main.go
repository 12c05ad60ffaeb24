package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/roamio/discovery-api/cache"
	"github.com/roamio/discovery-api/classifier"
	"github.com/roamio/discovery-api/config"
	"github.com/roamio/discovery-api/controllers"
	"github.com/roamio/discovery-api/discovery"
	"github.com/roamio/discovery-api/middleware"
	"github.com/roamio/discovery-api/providers"
	"github.com/roamio/discovery-api/routes"
	"github.com/roamio/discovery-api/votes"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	db := config.InitDB()

	// Tile cache: in-process by default, shared redis when configured.
	var tiles cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		tiles = cache.NewRedisStore(client, 0)
		logger.Info("using redis tile cache", zap.String("addr", cfg.RedisAddr))
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	adapters := []providers.Provider{
		providers.NewGoogleProvider(cfg.GoogleEndpoint, cfg.GoogleAPIKey, httpClient, logger),
		providers.NewFoursquareProvider(cfg.FoursquareEndpoint, cfg.FoursquareAPIKey, httpClient, logger),
		providers.NewOverpassProvider(cfg.OverpassEndpoint, httpClient, logger),
	}

	venueStore := classifier.NewGormVenueStore(db)
	var inference classifier.Inference
	if cfg.InferenceAPIKey != "" {
		inference = classifier.NewOpenAIInference(cfg.InferenceEndpoint, cfg.InferenceAPIKey, cfg.InferenceModel, logger)
	}
	classifySvc := classifier.NewService(venueStore, inference, cfg.ClassifierTTL, logger)

	overlay := votes.NewOverlay(votes.NewGormStore(db), venueStore, logger)
	placeStore := discovery.NewGormPlaceStore(db)

	discoverySvc := discovery.NewService(
		cfg,
		tiles,
		adapters,
		discovery.NewReconciler(cfg.DedupDistanceMeters),
		placeStore,
		classifySvc,
		overlay,
		logger,
	)

	r := gin.Default()
	routes.SetupRoutes(r, routes.Deps{
		Config:      cfg,
		Discovery:   controllers.NewDiscoveryController(discoverySvc, logger),
		Places:      controllers.NewPlaceController(discoverySvc),
		Classify:    controllers.NewClassifyController(classifySvc, venueStore, placeStore, logger),
		Votes:       controllers.NewVoteController(overlay, logger),
		IPLimiter:   middleware.NewKeyedLimiter(120, 30),
		UserLimiter: middleware.NewKeyedLimiter(cfg.VoteRatePerMinute, cfg.VoteBurst),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	logger.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
