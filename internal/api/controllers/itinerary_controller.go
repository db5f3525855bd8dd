package controllers

import (
	"net/http"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/request_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/services"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
	}
}

// GenerateItinerary godoc
// @Summary Generate a trip itinerary
// @Description Synthesize a fully-scheduled multi-day itinerary from a trip request
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.TripRequest true "Trip request"
// @Success 200 {object} response_models.Itinerary
// @Failure 400 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /itineraries/generate [post]
func (i *ItineraryController) GenerateItinerary(c *gin.Context) {
	var req request_models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid trip request payload")
		return
	}

	itinerary, err := i.itineraryService.GenerateItinerary(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itinerary, "Itinerary generated successfully")
}
