package api

import (
	"promptlab/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine serving every /api route
func NewRouter(stats *StatsHandler, comparisons *ComparisonHandler, logger *internal.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(recoverJSON(logger)), requestLogger(logger))

	api := router.Group("/api")
	{
		api.GET("/config", stats.Config)

		s := api.Group("/stats")
		s.POST("/describe", stats.Describe)
		s.POST("/ttest", stats.TTest)
		s.POST("/wilcoxon", stats.Wilcoxon)
		s.POST("/effect-size", stats.EffectSize)

		api.GET("/comparisons/report", comparisons.Report)
		api.GET("/comparisons/:id", comparisons.Get)
	}

	return router
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
