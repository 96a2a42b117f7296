package api

import (
	"net/http"
	"strconv"
	"time"

	"promptlab/app"
	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal"
	"promptlab/internal/errors"
	"promptlab/ports"

	"github.com/gin-gonic/gin"
)

// ComparisonHandler serves reports over the configured comparison source
type ComparisonHandler struct {
	service *app.ComparisonService
	source  ports.ComparisonSource
	logger  *internal.Logger
}

// NewComparisonHandler creates a comparison handler. source may be nil, in
// which case every report request fails with CONFIG_INVALID.
func NewComparisonHandler(service *app.ComparisonService, source ports.ComparisonSource, logger *internal.Logger) *ComparisonHandler {
	return &ComparisonHandler{service: service, source: source, logger: logger}
}

// Report analyses the stored comparisons. Query parameters: since (RFC3339),
// limit, format (json or markdown).
func (h *ComparisonHandler) Report(c *gin.Context) {
	if h.source == nil {
		writeError(c, h.logger, errors.ConfigInvalid("no comparison source configured: set DATABASE_URL or COMPARISONS_FILE"))
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	report, err := h.service.Run(c.Request.Context(), h.source, filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown()))
	default:
		c.JSON(http.StatusOK, report)
	}
}

// parseFilter reads since and limit from the query string
func parseFilter(c *gin.Context) (ports.ComparisonFilter, error) {
	var filter ports.ComparisonFilter
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.InvalidInput("since must be an RFC3339 timestamp")
		}
		filter.Since = since
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.InvalidInput("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

type comparisonResponse struct {
	comparison.Record
	ScoreDiff float64 `json:"score_diff"`
}

// Get returns one stored comparison with its score difference
func (h *ComparisonHandler) Get(c *gin.Context) {
	lookup, ok := h.source.(ports.ComparisonLookup)
	if !ok {
		writeError(c, h.logger, errors.ConfigInvalid("the configured comparison source does not support lookups by id"))
		return
	}

	id, err := core.ParseComparisonID(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, errors.InvalidInput(err.Error()))
		return
	}

	rec, err := lookup.GetComparison(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comparisonResponse{Record: *rec, ScoreDiff: rec.ScoreDiff()})
}
