package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bilmo5352/nsequotes/models"
	"github.com/bilmo5352/nsequotes/scraper"
)

// Health returns a handler for GET /api/v1/health.
func Health(sc *scraper.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       "healthy",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			SessionStats: sc.Stats(),
			Version:      "0.1.0",
		})
	}
}
