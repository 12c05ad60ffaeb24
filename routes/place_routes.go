package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/controllers"
)

func SetupPlaceRoutes(group *gin.RouterGroup, placeController *controllers.PlaceController) {
	places := group.Group("/places")
	{
		places.GET("/:idOrSlug", placeController.GetPlace)
	}
}
