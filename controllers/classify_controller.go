package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/classifier"
	"github.com/roamio/discovery-api/discovery"
	"go.uber.org/zap"
)

type ClassifyController struct {
	Classifier *classifier.Service
	Venues     classifier.VenueStore
	Places     discovery.PlaceStore
	Logger     *zap.Logger
}

func NewClassifyController(svc *classifier.Service, venues classifier.VenueStore, places discovery.PlaceStore, logger *zap.Logger) *ClassifyController {
	return &ClassifyController{
		Classifier: svc,
		Venues:     venues,
		Places:     places,
		Logger:     logger.Named("classify_controller"),
	}
}

type ClassifyRequest struct {
	VenueID uint `json:"venueId" binding:"required"`
	Force   bool `json:"force"`
}

// Classify godoc
// @Summary Run activity classification for a venue
// @Description Secret-protected; force bypasses the classification TTL
// @Tags classification
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Venue to classify"
// @Success 200 {object} classifier.Result
// @Router /classify [post]
func (cc *ClassifyController) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	venue, err := cc.Venues.ByID(c.Request.Context(), req.VenueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching venue"})
		return
	}
	if venue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}

	place, err := cc.Places.ByIDOrSlug(c.Request.Context(), strconv.FormatUint(uint64(venue.PlaceID), 10))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Place not found for venue"})
		return
	}

	result, err := cc.Classifier.Classify(c.Request.Context(), place, venue, req.Force)
	if err != nil {
		cc.Logger.Error("classification failed", zap.Uint("venue_id", req.VenueID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Classification failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
