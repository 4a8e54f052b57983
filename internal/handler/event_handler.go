package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/talentbridge/match-api/internal/dto"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
	"github.com/talentbridge/match-api/pkg/response"
)

type eventIngestor interface {
	HandleEvent(ctx context.Context, event dto.ChangeEvent) (*dto.ChangeEventResult, error)
}

// EventHandler accepts upstream change notifications.
type EventHandler struct {
	recompute eventIngestor
	validate  *validator.Validate
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(recompute eventIngestor) *EventHandler {
	return &EventHandler{recompute: recompute, validate: validator.New()}
}

// Ingest godoc
// @Summary Notify the engine of an upstream data change
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.ChangeEvent true "Change event"
// @Success 202 {object} response.Envelope
// @Router /internal/events [post]
func (h *EventHandler) Ingest(c *gin.Context) {
	var event dto.ChangeEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event"))
		return
	}

	result, err := h.recompute.HandleEvent(c.Request.Context(), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}
