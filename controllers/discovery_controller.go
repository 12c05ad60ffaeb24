package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/discovery"
	"github.com/roamio/discovery-api/types"
	"go.uber.org/zap"
)

type DiscoveryController struct {
	Service *discovery.Service
	Logger  *zap.Logger
}

func NewDiscoveryController(service *discovery.Service, logger *zap.Logger) *DiscoveryController {
	return &DiscoveryController{Service: service, Logger: logger.Named("discovery_controller")}
}

type DiscoverQueryParams struct {
	Lat    *float64 `form:"lat"`
	Lng    *float64 `form:"lng"`
	SwLat  *float64 `form:"swLat"`
	SwLng  *float64 `form:"swLng"`
	NeLat  *float64 `form:"neLat"`
	NeLng  *float64 `form:"neLng"`
	Radius float64  `form:"radius"`
	Limit  int      `form:"limit"`

	Activities string `form:"activities"`
	Tags       string `form:"tags"`
	Categories string `form:"categories"`
	Refresh    bool   `form:"refresh"`
}

// Discover godoc
// @Summary Discover places inside a viewport or radius with faceted filters
// @Tags discovery
// @Accept json
// @Produce json
// @Param lat query number false "Center latitude (wins over bounds midpoint)"
// @Param lng query number false "Center longitude"
// @Param swLat query number false "Bounds southwest latitude"
// @Param swLng query number false "Bounds southwest longitude"
// @Param neLat query number false "Bounds northeast latitude"
// @Param neLng query number false "Bounds northeast longitude"
// @Param radius query number false "Search radius in meters"
// @Param limit query integer false "Maximum result count"
// @Param activities query string false "Comma-separated activity filter"
// @Param tags query string false "Comma-separated tag filter"
// @Param categories query string false "Comma-separated category filter"
// @Param refresh query boolean false "Bypass cache freshness checks"
// @Success 200 {object} types.DiscoveryResult
// @Router /discover [get]
func (dc *DiscoveryController) Discover(c *gin.Context) {
	var params DiscoverQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := types.DiscoveryQuery{
		RadiusMeters: params.Radius,
		Limit:        params.Limit,
		Activities:   splitList(params.Activities),
		Tags:         splitList(params.Tags),
		Categories:   splitList(params.Categories),
		BypassCache:  params.Refresh,
	}
	if params.Lat != nil && params.Lng != nil {
		query.Center = &types.LatLng{Lat: *params.Lat, Lng: *params.Lng}
	}
	if params.SwLat != nil && params.SwLng != nil && params.NeLat != nil && params.NeLng != nil {
		query.Bounds = &types.Bounds{
			Southwest: types.LatLng{Lat: *params.SwLat, Lng: *params.SwLng},
			Northeast: types.LatLng{Lat: *params.NeLat, Lng: *params.NeLng},
		}
	}

	result, err := dc.Service.Discover(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, types.ErrInvalidBounds) || errors.Is(err, types.ErrMissingCenter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dc.Logger.Error("discovery failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No place data available for this area"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshTiles godoc
// @Summary Force-refresh the configured warm tiles
// @Description Iterates the warm tile list with cache bypass; secret-protected
// @Tags discovery
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /refresh [post]
func (dc *DiscoveryController) RefreshTiles(c *gin.Context) {
	results := dc.Service.RefreshTiles(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"tiles": results})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
