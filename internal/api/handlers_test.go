package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptlab/adapters/stats/compare"
	"promptlab/app"
	"promptlab/domain/comparison"
	"promptlab/internal/errors"
	"promptlab/internal/testkit"
	"promptlab/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(source ports.ComparisonSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := compare.NewEngine(compare.DefaultConfig(), nil)
	service := app.NewComparisonService(engine, nil)
	return NewRouter(NewStatsHandler(engine, nil), NewComparisonHandler(service, source, nil), nil)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestDescribe(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodPost, "/api/stats/describe", `{"sample":[1,2,3,4,5]}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 3.0, body["mean"])
	assert.Equal(t, 3.0, body["median"])
	assert.InDelta(t, math.Sqrt2, body["standard_deviation"], 1e-12)
}

func TestDescribe_EmptySampleIsBadRequest(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodPost, "/api/stats/describe", `{"sample":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeInvalidInput, decode(t, w)["code"])
}

func TestDescribe_OverflowEncodesNull(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodPost, "/api/stats/describe", `{"sample":[1e308,1e308,1e308]}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Nil(t, body["mean"])
	assert.Nil(t, body["standard_deviation"])
	assert.Equal(t, 1e308, body["median"])
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodPost, "/api/stats/ttest", `{"before":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTTest(t *testing.T) {
	router := newTestRouter(nil)

	w := do(t, router, http.MethodPost, "/api/stats/ttest", `{"before":[1,2,3,4,5],"after":[3,4,5,6,8]}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.InDelta(t, 2.2/(0.4/math.Sqrt(5)), body["t_statistic"], 1e-9)
	assert.Equal(t, 4.0, body["degrees_of_freedom"])
	assert.Equal(t, string(compare.NormalApproximation), body["method"])

	w = do(t, router, http.MethodPost, "/api/stats/ttest", `{"before":[1,2,3,4,5],"after":[3,4,5,6,8],"method":"student"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(compare.StudentT), decode(t, w)["method"])

	w = do(t, router, http.MethodPost, "/api/stats/ttest", `{"before":[1,2],"after":[1,2],"method":"bootstrap"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/stats/ttest", `{"before":[1,2,3],"after":[1,2]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTTest_IdenticalSamplesEncodeNull(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodPost, "/api/stats/ttest", `{"before":[1,2,3],"after":[1,2,3]}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Nil(t, body["t_statistic"])
	assert.Nil(t, body["p_value"])
}

func TestWilcoxon(t *testing.T) {
	router := newTestRouter(nil)

	w := do(t, router, http.MethodPost, "/api/stats/wilcoxon", `{"before":[0,0,0,0,0],"after":[1,2,3,4,5]}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 0.0, body["w"])
	assert.Equal(t, true, body["is_significant"])

	w = do(t, router, http.MethodPost, "/api/stats/wilcoxon", `{"before":[0,0,0,0,0],"after":[1,2,3,4,5],"alpha":0.01}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["is_significant"])

	w = do(t, router, http.MethodPost, "/api/stats/wilcoxon", `{"before":[0,0,0,0,0],"after":[1,2,3,4,5],"alpha":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/stats/wilcoxon", `{"before":[1,2,3,4,5],"after":[1,2,3,4,5]}`)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["degenerate"])
	assert.Nil(t, body["z_statistic"])
	assert.Equal(t, 1.0, body["p_value"])
}

func TestEffectSize(t *testing.T) {
	router := newTestRouter(nil)

	w := do(t, router, http.MethodPost, "/api/stats/effect-size", `{"z":-3,"n":9}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.InDelta(t, 1.0, body["effect_size"], 1e-12)
	assert.Equal(t, "large", body["magnitude"])

	w = do(t, router, http.MethodPost, "/api/stats/effect-size", `{"z":1,"n":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfig(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, compare.DefaultZScore, body["z_score"])
	assert.Equal(t, compare.DefaultAlpha, body["alpha"])
}

func TestReport_WithoutSource(t *testing.T) {
	w := do(t, newTestRouter(nil), http.MethodGet, "/api/comparisons/report", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.CodeConfigInvalid, decode(t, w)["code"])
}

func TestReport(t *testing.T) {
	config := testkit.DefaultComparisonConfig()
	config.Count = 30
	router := newTestRouter(testkit.NewTestKit(config).Source())

	w := do(t, router, http.MethodGet, "/api/comparisons/report?limit=25", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 25.0, body["records"])
	assert.Contains(t, body, "scores")
	assert.Contains(t, body, "tokens")

	w = do(t, router, http.MethodGet, "/api/comparisons/report?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, w.Body.String(), "# Prompt comparison report")

	w = do(t, router, http.MethodGet, "/api/comparisons/report?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/comparisons/report?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReport_EmptySourceIsBadRequest(t *testing.T) {
	router := newTestRouter(testkit.NewInMemorySource(comparison.Records{}))

	w := do(t, router, http.MethodGet, "/api/comparisons/report", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComparison(t *testing.T) {
	config := testkit.DefaultComparisonConfig()
	config.Count = 3
	router := newTestRouter(testkit.NewTestKit(config).Source())

	w := do(t, router, http.MethodGet, "/api/comparisons/cmp_0002", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "cmp_0002", body["id"])
	assert.InDelta(t, body["enhanced_score"].(float64)-body["base_score"].(float64), body["score_diff"], 1e-9)

	w = do(t, router, http.MethodGet, "/api/comparisons/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.CodeNotFound, decode(t, w)["code"])
}

type listOnlySource struct{}

func (listOnlySource) ListComparisons(context.Context, ports.ComparisonFilter) (comparison.Records, error) {
	return nil, nil
}

func TestGetComparison_SourceWithoutLookup(t *testing.T) {
	w := do(t, newTestRouter(listOnlySource{}), http.MethodGet, "/api/comparisons/x", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.CodeConfigInvalid, decode(t, w)["code"])
}

func TestPanicIsInternalError(t *testing.T) {
	router := newTestRouter(nil)
	router.GET("/api/boom", func(*gin.Context) { panic("boom") })

	w := do(t, router, http.MethodGet, "/api/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, errors.CodeInternalError, body["code"])
	assert.Equal(t, "panic: boom", body["error"])
}
