package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/config"
	"github.com/roamio/discovery-api/controllers"
	"github.com/roamio/discovery-api/metrics"
	"github.com/roamio/discovery-api/middleware"
)

// Deps carries the wired controllers and middleware state into route setup.
type Deps struct {
	Config      *config.Config
	Discovery   *controllers.DiscoveryController
	Places      *controllers.PlaceController
	Classify    *controllers.ClassifyController
	Votes       *controllers.VoteController
	IPLimiter   *middleware.KeyedLimiter
	UserLimiter *middleware.KeyedLimiter
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public discovery surface
	public := r.Group("/api")
	public.Use(middleware.RateLimitPerIP(deps.IPLimiter))
	{
		public.GET("/discover", deps.Discovery.Discover)
		SetupPlaceRoutes(public, deps.Places)
	}

	// Authenticated community surface
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.Config.JWTSecret))
	{
		protected.POST("/vote", middleware.RateLimitPerUser(deps.UserLimiter), deps.Votes.Vote)
	}

	// Scheduled-job surface
	cron := r.Group("/api")
	cron.Use(middleware.CronSecretMiddleware(deps.Config.CronSecret))
	{
		cron.POST("/classify", deps.Classify.Classify)
		cron.POST("/refresh", deps.Discovery.RefreshTiles)
	}
}
