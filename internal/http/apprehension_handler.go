package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apprehension-service/internal/model"
)

func (h *Handler) listApprehensions(c *gin.Context) {
	filter := model.ApprehensionFilter{
		DateFrom:    parseDate(c.Query("dateFrom")),
		DateTo:      parseDate(c.Query("dateTo")),
		Agency:      strings.TrimSpace(c.Query("agency")),
		Violation:   strings.TrimSpace(c.Query("violation")),
		MvType:      strings.TrimSpace(c.Query("mvType")),
		PlateNumber: strings.TrimSpace(c.Query("plateNumber")),
		DriverName:  strings.TrimSpace(c.Query("driverName")),
	}

	page, err := h.apprehensions.List(c.Request.Context(), filter, parsePagination(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) getApprehension(c *gin.Context) {
	record, err := h.apprehensions.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) createApprehension(c *gin.Context) {
	var record model.Apprehension
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	if err := h.apprehensions.Create(c.Request.Context(), &record); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) updateApprehension(c *gin.Context) {
	var update model.ApprehensionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	record, err := h.apprehensions.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), update)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) deleteApprehension(c *gin.Context) {
	if err := h.apprehensions.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "apprehension deleted"})
}

// importApprehensions accepts a multipart upload with the workbook under the
// "file" field.
func (h *Handler) importApprehensions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("unreadable file"))
		return
	}
	defer file.Close()

	result, err := h.apprehensions.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) getStats(c *gin.Context) {
	filter := model.StatsFilter{
		Month:               strings.TrimSpace(c.Query("month")),
		DateFrom:            parseDate(c.Query("dateFrom")),
		DateTo:              parseDate(c.Query("dateTo")),
		Agency:              strings.TrimSpace(c.Query("agency")),
		Violation:           strings.TrimSpace(c.Query("violation")),
		PlaceOfApprehension: strings.TrimSpace(c.Query("placeOfApprehension")),
		TopLimit:            intQuery(c, "topLimit"),
	}

	stats, err := h.analytics.GetStats(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}
