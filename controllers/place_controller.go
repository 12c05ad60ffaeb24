package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/discovery"
	"github.com/roamio/discovery-api/types"
)

type PlaceController struct {
	Service *discovery.Service
}

func NewPlaceController(service *discovery.Service) *PlaceController {
	return &PlaceController{Service: service}
}

// GetPlace godoc
// @Summary Get a canonical place with its provider sources
// @Tags places
// @Accept json
// @Produce json
// @Param idOrSlug path string true "Place ID or slug"
// @Success 200 {object} models.Place
// @Router /places/{idOrSlug} [get]
func (pc *PlaceController) GetPlace(c *gin.Context) {
	idOrSlug := c.Param("idOrSlug")

	place, err := pc.Service.PlaceByIDOrSlug(c.Request.Context(), idOrSlug)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching place"})
		return
	}

	c.JSON(http.StatusOK, place)
}
