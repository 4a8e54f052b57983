package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talentbridge/match-api/internal/dto"
	"github.com/talentbridge/match-api/pkg/response"
)

type matchReader interface {
	RecommendedListings(ctx context.Context, studentID string, limit int) ([]dto.RecommendedListing, bool, error)
	RecommendedStudents(ctx context.Context, listingID string, limit int) ([]dto.RecommendedStudent, error)
	Explain(ctx context.Context, studentID, listingID string) (*dto.MatchExplanation, error)
}

// RecommendationHandler exposes the matching read endpoints.
type RecommendationHandler struct {
	matches matchReader
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(matches matchReader) *RecommendationHandler {
	return &RecommendationHandler{matches: matches}
}

// ListForStudent godoc
// @Summary Ranked listing recommendations for a student
// @Tags Recommendations
// @Produce json
// @Param id path string true "Student ID"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/recommendations [get]
func (h *RecommendationHandler) ListForStudent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	recommendations, degraded, err := h.matches.RecommendedListings(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if degraded {
		meta = map[string]interface{}{"degraded": true}
	}
	response.JSON(c, http.StatusOK, recommendations, nil, meta)
}

// Explain godoc
// @Summary Score breakdown for one student and listing pair
// @Tags Recommendations
// @Produce json
// @Param id path string true "Student ID"
// @Param listingId path string true "Listing ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/recommendations/{listingId} [get]
func (h *RecommendationHandler) Explain(c *gin.Context) {
	explanation, err := h.matches.Explain(c.Request.Context(), c.Param("id"), c.Param("listingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if explanation.Degraded {
		meta = map[string]interface{}{"degraded": true}
	}
	response.JSON(c, http.StatusOK, explanation, nil, meta)
}

// Candidates godoc
// @Summary Skill-ranked student candidates for a listing
// @Tags Recommendations
// @Produce json
// @Param id path string true "Listing ID"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /listings/{id}/candidates [get]
func (h *RecommendationHandler) Candidates(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	candidates, err := h.matches.RecommendedStudents(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}
