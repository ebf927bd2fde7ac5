package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/service"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
	"github.com/studyflow/studyflow-api/pkg/response"
)

// PreferenceHandler exposes study preference endpoints.
type PreferenceHandler struct {
	service *service.PreferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get study preferences
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pref, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pref, nil)
}

// Update godoc
// @Summary Update study preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdatePreferencesRequest true "Preferences payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}

	pref, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pref, nil)
}

// Reset godoc
// @Summary Reset study preferences to defaults
// @Tags Preferences
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /preferences [delete]
func (h *PreferenceHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Reset(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
