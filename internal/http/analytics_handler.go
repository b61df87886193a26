package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apprehension-service/internal/model"
)

func (h *Handler) getTrends(c *gin.Context) {
	filter := model.TrendsFilter{
		AnalyticsFilter: parseAnalyticsFilter(c),
		Granularity:     model.Granularity(strings.TrimSpace(c.Query("granularity"))),
	}

	trends, err := h.analytics.GetTrends(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(trends))
}

func (h *Handler) getDistributions(c *gin.Context) {
	filter := model.DistributionsFilter{
		AnalyticsFilter: parseAnalyticsFilter(c),
		GroupBy:         model.GroupBy(strings.TrimSpace(c.Query("groupBy"))),
		Limit:           intQuery(c, "limit"),
	}

	distributions, err := h.analytics.GetDistributions(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(distributions))
}

func (h *Handler) getTimePatterns(c *gin.Context) {
	patterns, err := h.analytics.GetTimePatterns(c.Request.Context(), parseAnalyticsFilter(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(patterns))
}

func (h *Handler) getSummary(c *gin.Context) {
	filter := model.SummaryFilter{
		AnalyticsFilter: parseAnalyticsFilter(c),
		ComparePrevious: strings.EqualFold(strings.TrimSpace(c.Query("comparePrevious")), "true"),
	}

	summary, err := h.analytics.GetSummary(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(summary))
}
