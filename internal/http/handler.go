package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"apprehension-service/internal/model"
	"apprehension-service/internal/service"
)

// CacheMiddleware carries the per-route response caches; a nil entry
// disables caching for that family.
type CacheMiddleware struct {
	List      gin.HandlerFunc
	Detail    gin.HandlerFunc
	Stats     gin.HandlerFunc
	Analytics gin.HandlerFunc
}

// CookieConfig shapes the refresh-token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge int
}

type Handler struct {
	apprehensions *service.ApprehensionService
	analytics     *service.AnalyticsService
	auth          *service.AuthService
	users         *service.UserService
	cached        CacheMiddleware
	cookie        CookieConfig
	log           zerolog.Logger
}

func NewHandler(
	apprehensions *service.ApprehensionService,
	analytics *service.AnalyticsService,
	authService *service.AuthService,
	users *service.UserService,
	cached CacheMiddleware,
	cookie CookieConfig,
	log zerolog.Logger,
) *Handler {
	if cached.List == nil {
		cached.List = passthrough
	}
	if cached.Detail == nil {
		cached.Detail = passthrough
	}
	if cached.Stats == nil {
		cached.Stats = passthrough
	}
	if cached.Analytics == nil {
		cached.Analytics = passthrough
	}
	return &Handler{
		apprehensions: apprehensions,
		analytics:     analytics,
		auth:          authService,
		users:         users,
		cached:        cached,
		cookie:        cookie,
		log:           log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware, adminMiddleware gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/health", h.health)

	v1 := api.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/logout", h.logout)

	records := v1.Group("/apprehensions")
	records.Use(authMiddleware)
	records.GET("", h.cached.List, h.listApprehensions)
	records.GET("/stats", h.cached.Stats, h.getStats)
	records.GET("/:id", h.cached.Detail, h.getApprehension)
	records.POST("", h.createApprehension)
	records.POST("/import", adminMiddleware, h.importApprehensions)
	records.PUT("/:id", h.updateApprehension)
	records.DELETE("/:id", adminMiddleware, h.deleteApprehension)

	analytics := v1.Group("/analytics")
	analytics.Use(authMiddleware)
	analytics.GET("/trends", h.cached.Analytics, h.getTrends)
	analytics.GET("/distributions", h.cached.Analytics, h.getDistributions)
	analytics.GET("/time-patterns", h.cached.Analytics, h.getTimePatterns)
	analytics.GET("/summary", h.cached.Analytics, h.getSummary)

	users := v1.Group("/users")
	users.Use(authMiddleware, adminMiddleware)
	users.GET("", h.listUsers)
	users.GET("/:id", h.getUser)
	users.POST("", h.createUser)
	users.PUT("/:id", h.updateUser)
	users.DELETE("/:id", h.deleteUser)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case service.IsInvalidParameter(err):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

// parseDate accepts plain dates and RFC3339 timestamps; anything else
// contributes no bound.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		parsed = parsed.UTC()
		return &parsed
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed
	}
	return nil
}

func parsePagination(c *gin.Context) model.Pagination {
	page := model.Pagination{}
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.Page = n
		}
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.Limit = n
		}
	}
	return page
}

func parseAnalyticsFilter(c *gin.Context) model.AnalyticsFilter {
	return model.AnalyticsFilter{
		DateFrom:            parseDate(c.Query("dateFrom")),
		DateTo:              parseDate(c.Query("dateTo")),
		Agency:              strings.TrimSpace(c.Query("agency")),
		Violation:           strings.TrimSpace(c.Query("violation")),
		PlaceOfApprehension: strings.TrimSpace(c.Query("placeOfApprehension")),
	}
}

// intQuery returns the integer query value, or zero when absent or
// malformed.
func intQuery(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func passthrough(c *gin.Context) {
	c.Next()
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
