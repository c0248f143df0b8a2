package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loganomaly/rcaservice/internal/config"
	"github.com/loganomaly/rcaservice/internal/models"
	"github.com/loganomaly/rcaservice/internal/repository"
	"github.com/loganomaly/rcaservice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records []models.RcaResult
	err     error
}

func (f *fakeStore) FetchAll(ctx context.Context) ([]models.RcaResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeStore) FetchLatest(ctx context.Context) (*models.RcaResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) == 0 {
		return nil, repository.ErrNoResults
	}
	return &f.records[0], nil
}

type stubGenerator struct {
	reasoning string
	err       error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reasoning, nil
}

func setupRouter(store repository.RcaStore, gen services.ExplanationGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewRCAQueryService(store, gen, config.GenerationConfig{
		Enabled: true,
		Mode:    config.ModeFull,
		Timeout: time.Second,
	})
	ctrl := NewRCAController(svc)

	r := gin.New()
	r.RedirectTrailingSlash = false
	rca := r.Group("/rca")
	{
		rca.GET("/", ctrl.GetRCAResults)
		rca.GET("/latest", ctrl.GetLatestRCAResult)
	}
	return r
}

func doRequest(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetRCAResultsEnriched(t *testing.T) {
	store := &fakeStore{records: []models.RcaResult{
		{
			ID:       1,
			Filename: "app.log",
			AppID:    "checkout",
			Events:   json.RawMessage(`[{"level":"ERROR","msg":"disk full"}]`),
			Logdate:  time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC),
		},
	}}
	gen := &stubGenerator{reasoning: "The disk filled up."}
	r := setupRouter(store, gen)

	w := doRequest(r, "/rca/")
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.RcaResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)

	assert.Equal(t, "app.log", results[0].Filename)
	assert.Equal(t, "2026-08-14T10:30:00Z", results[0].Logdate)
	assert.Contains(t, results[0].Explanation, "The system encountered a failure.")
	assert.Contains(t, results[0].Explanation, `1. {"level": "ERROR", "msg": "disk full"}`)
	assert.Contains(t, results[0].Explanation, "AI Reasoning: The disk filled up.")
	assert.NotNil(t, results[0].Events)
}

func TestGetRCAResultsEmptyStore(t *testing.T) {
	r := setupRouter(&fakeStore{}, &stubGenerator{})

	w := doRequest(r, "/rca/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no rca results")
}

func TestGetRCAResultsStorageError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	r := setupRouter(store, &stubGenerator{})

	w := doRequest(r, "/rca/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "connection refused")
}

func TestGetRCAResultsGenerationFailureIsolated(t *testing.T) {
	store := &fakeStore{records: []models.RcaResult{
		{ID: 1, Filename: "app.log", Logdate: time.Now()},
	}}
	gen := &stubGenerator{err: errors.New("model crashed")}
	r := setupRouter(store, gen)

	// A generation failure marks the record but the request still succeeds.
	w := doRequest(r, "/rca/")
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.RcaResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Explanation, "explanation unavailable: model crashed")
}

func TestGetLatestRCAResult(t *testing.T) {
	store := &fakeStore{records: []models.RcaResult{
		{ID: 9, Filename: "latest.log", Logdate: time.Now().UTC()},
		{ID: 8, Filename: "older.log", Logdate: time.Now().UTC().Add(-time.Hour)},
	}}
	r := setupRouter(store, &stubGenerator{})

	w := doRequest(r, "/rca/latest")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.RcaResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, uint(9), result.ID)
	assert.Equal(t, "latest.log", result.Filename)
}

func TestGetLatestRCAResultEmptyStore(t *testing.T) {
	r := setupRouter(&fakeStore{}, &stubGenerator{})

	w := doRequest(r, "/rca/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
