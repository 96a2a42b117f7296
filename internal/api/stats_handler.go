package api

import (
	"net/http"

	"promptlab/adapters/stats/compare"
	"promptlab/domain/core"
	"promptlab/internal"
	"promptlab/internal/errors"

	"github.com/gin-gonic/gin"
)

// StatsHandler exposes the comparison engine over JSON
type StatsHandler struct {
	engine *compare.Engine
	logger *internal.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(engine *compare.Engine, logger *internal.Logger) *StatsHandler {
	return &StatsHandler{engine: engine, logger: logger}
}

type describeRequest struct {
	Sample []float64 `json:"sample"`
}

type pairedRequest struct {
	Before []float64 `json:"before"`
	After  []float64 `json:"after"`
}

type tTestRequest struct {
	pairedRequest
	Method string `json:"method"`
}

type wilcoxonRequest struct {
	pairedRequest
	Alpha *float64 `json:"alpha"`
}

type effectSizeRequest struct {
	Z float64 `json:"z"`
	N int     `json:"n"`
}

type effectSizeResponse struct {
	EffectSize float64 `json:"effect_size"`
	Magnitude  string  `json:"magnitude"`
}

// Describe returns the descriptive summary of one sample
func (h *StatsHandler) Describe(c *gin.Context) {
	var req describeRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	summary, err := h.engine.Describe(req.Sample)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TTest runs a paired t-test. An explicit method overrides the configured one.
func (h *StatsHandler) TTest(c *gin.Context) {
	var req tTestRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var (
		res compare.TTestResult
		err error
	)
	if req.Method == "" {
		res, err = h.engine.PairedTTest(req.Before, req.After)
	} else {
		var method compare.TTestMethod
		if method, err = compare.ParseTTestMethod(req.Method); err == nil {
			res, err = compare.PairedTTestWith(req.Before, req.After, method)
		}
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Wilcoxon runs the one-sided signed-rank test of after over before
func (h *StatsHandler) Wilcoxon(c *gin.Context) {
	var req wilcoxonRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var (
		res compare.WilcoxonResult
		err error
	)
	switch {
	case req.Alpha == nil:
		res, err = h.engine.WilcoxonSignedRank(req.After, req.Before)
	case !(*req.Alpha > 0 && *req.Alpha < 1):
		err = errors.InvalidInputf(core.ErrInvalidParameter, "alpha must be in (0, 1), got %g", *req.Alpha)
	default:
		res, err = compare.WilcoxonSignedRankAlpha(req.After, req.Before, *req.Alpha)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// EffectSize returns r = |z|/√n and its conventional label
func (h *StatsHandler) EffectSize(c *gin.Context) {
	var req effectSizeRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	r, err := h.engine.EffectSize(req.Z, req.N)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, effectSizeResponse{EffectSize: r, Magnitude: compare.EffectMagnitude(r)})
}

// Config returns the effective engine parameters
func (h *StatsHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Config())
}
