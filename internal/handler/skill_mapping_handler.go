package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentbridge/match-api/internal/dto"
	"github.com/talentbridge/match-api/internal/service"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
	"github.com/talentbridge/match-api/pkg/response"
)

// SkillMappingHandler exposes the athletic skill mapping admin endpoints.
type SkillMappingHandler struct {
	mappings *service.SkillMappingService
}

// NewSkillMappingHandler constructs SkillMappingHandler.
func NewSkillMappingHandler(mappings *service.SkillMappingService) *SkillMappingHandler {
	return &SkillMappingHandler{mappings: mappings}
}

// List godoc
// @Summary List athletic skill mappings
// @Tags SkillMappings
// @Produce json
// @Param sport query string false "Filter by sport"
// @Success 200 {object} response.Envelope
// @Router /admin/skill-mappings [get]
func (h *SkillMappingHandler) List(c *gin.Context) {
	mappings, err := h.mappings.List(c.Request.Context(), c.Query("sport"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mappings, nil)
}

// Create godoc
// @Summary Create an athletic skill mapping
// @Tags SkillMappings
// @Accept json
// @Produce json
// @Param payload body dto.UpsertSkillMappingRequest true "Mapping payload"
// @Success 201 {object} response.Envelope
// @Router /admin/skill-mappings [post]
func (h *SkillMappingHandler) Create(c *gin.Context) {
	var req dto.UpsertSkillMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mapping, err := h.mappings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mapping)
}

// Update godoc
// @Summary Update an athletic skill mapping
// @Tags SkillMappings
// @Accept json
// @Produce json
// @Param id path string true "Mapping ID"
// @Param payload body dto.UpsertSkillMappingRequest true "Mapping payload"
// @Success 200 {object} response.Envelope
// @Router /admin/skill-mappings/{id} [put]
func (h *SkillMappingHandler) Update(c *gin.Context) {
	var req dto.UpsertSkillMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mapping, err := h.mappings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping, nil)
}
