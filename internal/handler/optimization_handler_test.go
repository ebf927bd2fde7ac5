package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	internalmiddleware "github.com/studyflow/studyflow-api/internal/middleware"
	"github.com/studyflow/studyflow-api/internal/models"
)

type optimizerMock struct {
	captured dto.OptimizeScheduleRequest
	applied  dto.ApplyChangesRequest
}

func (m *optimizerMock) Optimize(ctx context.Context, userID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	m.captured = req
	return &dto.OptimizeScheduleResponse{Preset: "default", Insights: []string{"Your schedule already looks well balanced."}}, nil
}

func (m *optimizerMock) ApplyChanges(ctx context.Context, userID string, req dto.ApplyChangesRequest) (*dto.OptimizeScheduleResponse, int, error) {
	m.applied = req
	return &dto.OptimizeScheduleResponse{Preset: "default"}, 2, nil
}

type reportMock struct{}

func (m *reportMock) Generate(ctx context.Context, userID, preset, format string) ([]byte, string, error) {
	return []byte("Action,Event\n"), "text/csv", nil
}

func (m *reportMock) GenerateLink(ctx context.Context, userID, preset, format string) (string, time.Time, error) {
	return "u1.123.path.sig", time.Now().Add(time.Hour), nil
}

func (m *reportMock) OpenArchived(token string) ([]byte, string, error) {
	return []byte("Action,Event\n"), "text/csv", nil
}

func authedRouter(register func(*gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})
		c.Next()
	})
	register(router)
	return router
}

func TestOptimizationHandlerOptimize(t *testing.T) {
	mockSvc := &optimizerMock{}
	handler := &OptimizationHandler{service: mockSvc, reports: &reportMock{}}
	router := authedRouter(func(r *gin.Engine) {
		r.POST("/schedule/optimize", handler.Optimize)
	})

	payload := []byte(`{"preset":"busy_week"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/optimize", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "busy_week", mockSvc.captured.Preset)

	var envelope struct {
		Data dto.OptimizeScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "default", envelope.Data.Preset)
}

func TestOptimizationHandlerOptimizeInvalidJSON(t *testing.T) {
	handler := &OptimizationHandler{service: &optimizerMock{}, reports: &reportMock{}}
	router := authedRouter(func(r *gin.Engine) {
		r.POST("/schedule/optimize", handler.Optimize)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/optimize", bytes.NewReader([]byte(`{"preset":`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationHandlerOptimizeUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &OptimizationHandler{service: &optimizerMock{}, reports: &reportMock{}}
	router := gin.New()
	router.POST("/schedule/optimize", handler.Optimize)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/optimize", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptimizationHandlerApply(t *testing.T) {
	mockSvc := &optimizerMock{}
	handler := &OptimizationHandler{service: mockSvc, reports: &reportMock{}}
	router := authedRouter(func(r *gin.Engine) {
		r.POST("/schedule/optimize/apply", handler.Apply)
	})

	payload := []byte(`{"eventIds":["a","b"]}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/optimize/apply", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"a", "b"}, mockSvc.applied.EventIDs)

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.EqualValues(t, 2, envelope.Meta["applied"])
}

func TestOptimizationHandlerReportLinkAndDownload(t *testing.T) {
	handler := &OptimizationHandler{service: &optimizerMock{}, reports: &reportMock{}}
	router := authedRouter(func(r *gin.Engine) {
		r.POST("/schedule/optimize/report/link", handler.ReportLink)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/optimize/report/link", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data["token"])

	// The download route is public; the signed token is the credential.
	gin.SetMode(gin.TestMode)
	public := gin.New()
	public.GET("/schedule/optimize/report/download", handler.Download)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/schedule/optimize/report/download?token=u1.123.path.sig", nil)
	public.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/schedule/optimize/report/download", nil)
	public.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationHandlerReport(t *testing.T) {
	handler := &OptimizationHandler{service: &optimizerMock{}, reports: &reportMock{}}
	router := authedRouter(func(r *gin.Engine) {
		r.GET("/schedule/optimize/report", handler.Report)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/optimize/report?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}
