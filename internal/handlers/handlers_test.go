package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/bt-analytics-service/internal/cache"
	"github.com/SAP-F-2025/bt-analytics-service/internal/config"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/memory"
	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const weeklyCSV = `Student,Week_Date,Q1,Q2,Q3,Q4,Q5,Q6,Q7,Q8,Q9,Q10
S1,2024-03-04,1,1,1,0,1,0,1,1,0,1
S2,2024-03-04,0,0,1,1,0,1,1,0,0,0
`

const paperCSV = `Question Text,Marks
Define a stack,2
Explain recursion,4
Design a cache for a web service,10
`

const monthlyHeader = "Student,Month,W1_Q1,W1_Q2,W1_Q3,W1_Q4,W1_Q5,W1_Q6,W1_Q7,W1_Q8,W1_Q9,W1_Q10," +
	"W2_Q1,W2_Q2,W2_Q3,W2_Q4,W2_Q5,W2_Q6,W2_Q7,W2_Q8,W2_Q9,W2_Q10," +
	"W3_Q1,W3_Q2,W3_Q3,W3_Q4,W3_Q5,W3_Q6,W3_Q7,W3_Q8,W3_Q9,W3_Q10," +
	"W4_Q1,W4_Q2,W4_Q3,W4_Q4,W4_Q5,W4_Q6,W4_Q7,W4_Q8,W4_Q9,W4_Q10\n"

// monthlyCSV has one student answering the first five questions of every week
func monthlyCSV() string {
	week := ",1,1,1,1,1,0,0,0,0,0"
	return monthlyHeader + "Asha,March" + strings.Repeat(week, 4) + "\n"
}

type fakeParser struct {
	claims *casdoorsdk.Claims
}

func (p fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if token != "valid" {
		return nil, errors.New("signature is invalid")
	}
	return p.claims, nil
}

func setupRouter(t *testing.T, withExports bool, auth *CasdoorAuthMiddleware) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)

	deps := services.ServiceDependencies{
		Repo:      memory.NewRepository(),
		Publisher: events.NewMockEventPublisher(slogger),
		Predictor: predict.NewRandomForest(10, 1),
	}
	if withExports {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		deps.Exports = cache.NewExportStore(cache.NewCacheManager(client), time.Minute, slogger)
	}

	v := validator.New()
	sm := services.NewDefaultServiceManager(deps, slogger, v)
	require.NoError(t, sm.Initialize(context.Background()))

	router := gin.New()
	SetupMiddleware(router, logger)
	newHandlerManager(sm, v, logger, auth, 1<<20).SetupRoutes(router)
	return router
}

func uploadRequest(t *testing.T, target, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWeeklyReportEndpoint(t *testing.T) {
	router := setupRouter(t, false, nil)

	rec := serve(router, uploadRequest(t, "/api/v1/reports/weekly", "week.csv", weeklyCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp struct {
		IdentifierColumn string `json:"identifier_column"`
		Rows             []struct {
			Student         string  `json:"student"`
			OverallAccuracy float64 `json:"overall_accuracy"`
		} `json:"rows"`
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "S1", resp.Rows[0].Student)
	assert.InDelta(t, 70, resp.Rows[0].OverallAccuracy, 1e-9)
	assert.NotEmpty(t, resp.RunID)

	runs := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs?kind=weekly", nil))
	require.Equal(t, http.StatusOK, runs.Code)
	var list services.RunListResponse
	require.NoError(t, json.Unmarshal(runs.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Total)

	one := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs/"+resp.RunID, nil))
	assert.Equal(t, http.StatusOK, one.Code)
}

func TestReportEndpointErrors(t *testing.T) {
	router := setupRouter(t, false, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		body   string
	}{
		{
			name:   "missing column",
			req:    uploadRequest(t, "/api/v1/reports/weekly", "week.csv", "Student,Week_Date,Q1\nS1,2024-03-04,1\n"),
			status: http.StatusBadRequest,
			body:   "Q10",
		},
		{
			name:   "missing file",
			req:    httptest.NewRequest(http.MethodPost, "/api/v1/reports/weekly", nil),
			status: http.StatusBadRequest,
			body:   "file",
		},
		{
			name:   "unsupported extension",
			req:    uploadRequest(t, "/api/v1/reports/paper", "paper.txt", paperCSV),
			status: http.StatusBadRequest,
			body:   "Validation failed",
		},
		{
			name:   "unknown student",
			req:    uploadRequest(t, "/api/v1/reports/monthly/trend?student=Zoe", "march.csv", monthlyCSV()),
			status: http.StatusNotFound,
			body:   "Zoe",
		},
		{
			name:   "export storage disabled",
			req:    httptest.NewRequest(http.MethodGet, "/api/v1/reports/exports/abc", nil),
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "unknown run",
			req:    httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs/missing", nil),
			status: http.StatusNotFound,
		},
		{
			name:   "bad run filter",
			req:    httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs?kind=yearly", nil),
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestMonthlyTrendEndpoint(t *testing.T) {
	router := setupRouter(t, false, nil)

	rec := serve(router, uploadRequest(t, "/api/v1/reports/monthly/trend?student=Asha", "march.csv", monthlyCSV()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Student string `json:"student"`
		Trend   []struct {
			Week     string  `json:"week"`
			Accuracy float64 `json:"accuracy"`
		} `json:"trend"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Asha", resp.Student)
	require.Len(t, resp.Trend, 4)
	assert.InDelta(t, 50, resp.Trend[2].Accuracy, 1e-9)
}

func TestPaperExportDownload(t *testing.T) {
	router := setupRouter(t, true, nil)

	rec := serve(router, uploadRequest(t, "/api/v1/reports/paper", "paper.csv", paperCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ExportID string `json:"export_id"`
		Summary  struct {
			TotalScore int `json:"total_score"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ExportID)
	assert.Equal(t, 30, resp.Summary.TotalScore)

	download := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/reports/exports/"+resp.ExportID, nil))
	require.Equal(t, http.StatusOK, download.Code)
	assert.Contains(t, download.Header().Get("Content-Disposition"), "BT_Analyzed_Question_Paper.csv")
	assert.True(t, strings.HasPrefix(download.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, download.Body.String(), "BT_Level")

	direct := serve(router, uploadRequest(t, "/api/v1/reports/paper/export", "paper.csv", paperCSV))
	require.Equal(t, http.StatusOK, direct.Code)
	assert.Equal(t, download.Body.String(), direct.Body.String())
}

func TestDeleteExport(t *testing.T) {
	router := setupRouter(t, true, nil)

	rec := serve(router, uploadRequest(t, "/api/v1/reports/paper", "paper.csv", paperCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		ExportID string `json:"export_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	target := "/api/v1/reports/exports/" + resp.ExportID

	download := serve(router, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, download.Code)
	expires, err := time.Parse(time.RFC3339, download.Header().Get("X-Export-Expires-At"))
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	assert.Equal(t, http.StatusNoContent, serve(router, httptest.NewRequest(http.MethodDelete, target, nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, target, nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodDelete, target, nil)).Code)
}

func TestDeleteExportWithoutStore(t *testing.T) {
	router := setupRouter(t, false, nil)

	rec := serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/reports/exports/0b7a5c1e-3f1d-4a8e-9a55-6f1f5c2d9e10", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWorkbookEndpoints(t *testing.T) {
	router := setupRouter(t, false, nil)

	for target, content := range map[string]string{
		"/api/v1/reports/weekly/xlsx":  weeklyCSV,
		"/api/v1/reports/monthly/xlsx": monthlyCSV(),
		"/api/v1/reports/paper/xlsx":   paperCSV,
	} {
		rec := serve(router, uploadRequest(t, target, "upload.csv", content))
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, services.ContentTypeXLSX, rec.Header().Get("Content-Type"), target)
		// xlsx files are zip archives
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), target)
	}
}

func TestUploadLimit(t *testing.T) {
	router := setupRouter(t, false, nil)

	big := weeklyCSV + strings.Repeat("S9,2024-03-04,1,1,1,1,1,1,1,1,1,1\n", 40000)
	rec := serve(router, uploadRequest(t, "/api/v1/reports/weekly", "week.csv", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadLimitWithoutContentLength(t *testing.T) {
	router := setupRouter(t, false, nil)

	big := weeklyCSV + strings.Repeat("S9,2024-03-04,1,1,1,1,1,1,1,1,1,1\n", 40000)
	req := uploadRequest(t, "/api/v1/reports/weekly", "week.csv", big)
	// chunked transfer: the size is only known once the body is read
	req.ContentLength = -1
	req.Body = io.NopCloser(io.MultiReader(req.Body))

	rec := serve(router, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload too large")
}

func TestAuthMiddleware(t *testing.T) {
	teacher := NewAuthMiddlewareWithParser(config.CasdoorConfig{}, fakeParser{claims: &casdoorsdk.Claims{
		User: casdoorsdk.User{Id: "t-1", Type: "teacher", Email: "t@example.com"},
	}})
	student := NewAuthMiddlewareWithParser(config.CasdoorConfig{}, fakeParser{claims: &casdoorsdk.Claims{
		User: casdoorsdk.User{Id: "s-1", Type: "student"},
	}})

	tests := []struct {
		name   string
		auth   *CasdoorAuthMiddleware
		header string
		status int
	}{
		{name: "no header", auth: teacher, status: http.StatusUnauthorized},
		{name: "malformed header", auth: teacher, header: "Token valid", status: http.StatusUnauthorized},
		{name: "invalid token", auth: teacher, header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "student role", auth: student, header: "Bearer valid", status: http.StatusForbidden},
		{name: "teacher role", auth: teacher, header: "Bearer valid", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, false, tt.auth)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(router, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRunsRecordRequester(t *testing.T) {
	auth := NewAuthMiddlewareWithParser(config.CasdoorConfig{}, fakeParser{claims: &casdoorsdk.Claims{
		User: casdoorsdk.User{Id: "admin-1", Type: "admin"},
	}})
	router := setupRouter(t, false, auth)

	req := uploadRequest(t, "/api/v1/reports/paper", "paper.csv", paperCSV)
	req.Header.Set("Authorization", "Bearer valid")
	require.Equal(t, http.StatusOK, serve(router, req).Code)

	list := httptest.NewRequest(http.MethodGet, "/api/v1/reports/runs?requested_by=admin-1", nil)
	list.Header.Set("Authorization", "Bearer valid")
	rec := serve(router, list)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp services.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "admin-1", resp.Runs[0].RequestedBy)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t, false, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bt-analytics-service")
}
