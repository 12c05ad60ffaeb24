package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/utils"
	"github.com/roamio/discovery-api/votes"
	"go.uber.org/zap"
)

type VoteController struct {
	Overlay *votes.Overlay
	Logger  *zap.Logger
}

func NewVoteController(overlay *votes.Overlay, logger *zap.Logger) *VoteController {
	return &VoteController{Overlay: overlay, Logger: logger.Named("vote_controller")}
}

type VoteRequest struct {
	VenueID      uint   `json:"venueId" binding:"required"`
	ActivityName string `json:"activityName" binding:"required"`
	Vote         *bool  `json:"vote" binding:"required"`
}

// Vote godoc
// @Summary Record a yes/no vote on a venue activity
// @Description A repeat vote from the same user replaces the prior one
// @Tags votes
// @Accept json
// @Produce json
// @Param request body VoteRequest true "Vote payload"
// @Success 200 {object} votes.VoteResult
// @Router /vote [post]
func (vc *VoteController) Vote(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := vc.Overlay.RecordVote(c.Request.Context(), req.VenueID, user.UserID, req.ActivityName, *req.Vote)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
			return
		}
		// A dropped vote corrupts visible totals, so persistence failures are
		// surfaced instead of swallowed.
		vc.Logger.Error("vote persistence failed",
			zap.Uint("venue_id", req.VenueID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, result)
}
