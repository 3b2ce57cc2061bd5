package handlers

import (
	"net/http"

	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ItineraryHandler exposes phase two: turning the caller's selections into a
// narrative itinerary, plus follow-up questions about the trip. The server
// keeps no state between phases, so both endpoints are safe to replay.
type ItineraryHandler struct {
	generator types.ItineraryGenerator
	log       *zap.SugaredLogger
}

func NewItineraryHandler(generator types.ItineraryGenerator) *ItineraryHandler {
	return &ItineraryHandler{
		generator: generator,
		log:       logger.GetLogger().Named("itinerary_handler"),
	}
}

// GenerateItinerary builds a narrative day-by-day plan from the caller's
// phase-one selections.
func (h *ItineraryHandler) GenerateItinerary(c *gin.Context) {
	var req types.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		_ = c.Error(err)
		return
	}

	itinerary, err := h.generator.GenerateItinerary(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("Itinerary generation failed",
			"destination", req.Destination,
			"error", err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.ItineraryResponse{
		Itinerary:       itinerary,
		SelectedTransit: req.SelectedTransit,
		SelectedHotel:   req.SelectedHotel,
	})
}

// AnswerQuestion forwards a free-text question about the trip to the
// generator.
func (h *ItineraryHandler) AnswerQuestion(c *gin.Context) {
	var req types.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}
	if req.Question == "" {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", "question is required"))
		return
	}

	answer, err := h.generator.AnswerQuestion(c.Request.Context(), req.Question, req.Context)
	if err != nil {
		h.log.Errorw("Question answering failed", "error", err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
