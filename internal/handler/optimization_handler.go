package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/service"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
	"github.com/studyflow/studyflow-api/pkg/response"
)

type scheduleOptimizer interface {
	Optimize(ctx context.Context, userID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error)
	ApplyChanges(ctx context.Context, userID string, req dto.ApplyChangesRequest) (*dto.OptimizeScheduleResponse, int, error)
}

type reportGenerator interface {
	Generate(ctx context.Context, userID, preset, format string) ([]byte, string, error)
	GenerateLink(ctx context.Context, userID, preset, format string) (string, time.Time, error)
	OpenArchived(token string) ([]byte, string, error)
}

// OptimizationHandler exposes the schedule optimization endpoints.
type OptimizationHandler struct {
	service scheduleOptimizer
	reports reportGenerator
}

// NewOptimizationHandler constructs the handler.
func NewOptimizationHandler(svc *service.OptimizationService, reports *service.ReportService) *OptimizationHandler {
	return &OptimizationHandler{service: svc, reports: reports}
}

// Optimize godoc
// @Summary Run schedule optimization
// @Description Produces a proposed change set for the caller's calendar. Inline events switch the run into preview mode.
// @Tags Optimization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.OptimizeScheduleRequest true "Optimization payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *OptimizationHandler) Optimize(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
		return
	}

	result, err := h.service.Optimize(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Apply godoc
// @Summary Apply proposed optimization changes
// @Description Re-runs the optimizer and persists the proposed changes, optionally restricted to specific event ids.
// @Tags Optimization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ApplyChangesRequest true "Apply payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/optimize/apply [post]
func (h *OptimizationHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ApplyChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
		return
	}

	result, applied, err := h.service.ApplyChanges(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"applied": applied})
}

// Report godoc
// @Summary Download the optimization proposal as a document
// @Tags Optimization
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param preset query string false "Optimization preset"
// @Param format query string false "Output format (csv or pdf)"
// @Success 200 {file} binary
// @Router /schedule/optimize/report [get]
func (h *OptimizationHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", service.ReportFormatCSV)
	payload, contentType, err := h.reports.Generate(c.Request.Context(), claims.UserID, c.Query("preset"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("schedule-optimization-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// ReportLink godoc
// @Summary Create a signed download link for an optimization report
// @Tags Optimization
// @Produce json
// @Security BearerAuth
// @Param preset query string false "Optimization preset"
// @Param format query string false "Output format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Router /schedule/optimize/report/link [post]
func (h *OptimizationHandler) ReportLink(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", service.ReportFormatCSV)
	token, expiresAt, err := h.reports.GenerateLink(c.Request.Context(), claims.UserID, c.Query("preset"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC(),
	}, nil)
}

// Download serves an archived report referenced by a signed token. The token
// itself authorizes the request, so no JWT is required here.
func (h *OptimizationHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	payload, contentType, err := h.reports.OpenArchived(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment")
	c.Data(http.StatusOK, contentType, payload)
}
