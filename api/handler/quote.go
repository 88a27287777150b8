package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bilmo5352/nsequotes/cache"
	"github.com/bilmo5352/nsequotes/models"
	"github.com/bilmo5352/nsequotes/scraper"
)

// Quote returns a handler for GET /api/v1/quote.
//
// Orchestration flow:
//  1. Bind & normalize the query, reject empty symbols.
//  2. Cache lookup (symbol + per-request options).
//  3. Scraper.Quote → navigate, await readiness, extract, persist artifacts.
//  4. Map the result to success/degraded, cache it, return 200.
//
// Partial artifacts are reported even on the error path so the caller can
// inspect what the session saw before failing.
func Quote(sc *scraper.Scraper, cc *cache.Cache, headlessDefault, screenshotDefault bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.QuoteRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.QuoteResponse{
				Status: models.StatusError,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Normalize()
		if req.Symbol == "" {
			c.JSON(http.StatusBadRequest, models.QuoteResponse{
				Status: models.StatusError,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "symbol must not be empty",
				},
			})
			return
		}

		headless := headlessDefault
		if req.Headless != nil {
			headless = *req.Headless
		}
		screenshot := screenshotDefault
		if req.TakeScreenshot != nil {
			screenshot = *req.TakeScreenshot
		}
		cacheKey := cache.Key(req.Symbol, headless, screenshot)

		if cached, hit := cc.Get(cacheKey); hit {
			resp := *cached
			resp.CacheStatus = "hit"
			resp.ElapsedSeconds = time.Since(start).Seconds()
			c.JSON(http.StatusOK, &resp)
			return
		}

		result, err := sc.Quote(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, result, req.Symbol, start)
			return
		}

		status := models.StatusSuccess
		if result.Data.Degraded() {
			status = models.StatusDegraded
		}
		resp := &models.QuoteResponse{
			Status:         status,
			Symbol:         req.Symbol,
			URL:            result.URL,
			Data:           &result.Data,
			Screenshot:     result.Artifacts.Screenshot,
			HTML:           result.Artifacts.HTML,
			JSON:           result.Artifacts.JSON,
			Timestamp:      result.Timestamp,
			ElapsedSeconds: time.Since(start).Seconds(),
		}

		if cc.Enabled() {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and
// writes a structured JSON error response carrying whatever artifacts the
// session produced before failing.
func respondError(c *gin.Context, err error, result *scraper.Result, symbol string, start time.Time) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	resp := models.QuoteResponse{
		Status:         models.StatusError,
		Symbol:         symbol,
		Error:          scrapeErr.ToDetail(),
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	if result != nil {
		resp.URL = result.URL
		resp.Screenshot = result.Artifacts.Screenshot
		resp.HTML = result.Artifacts.HTML
		resp.JSON = result.Artifacts.JSON
		resp.Timestamp = result.Timestamp
	}

	c.JSON(mapErrorToStatus(scrapeErr), resp)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeElementNotFound:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
