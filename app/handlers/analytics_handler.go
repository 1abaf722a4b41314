package handlers

import (
	"strconv"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	PageView(c fiber.Ctx) error
	Event(c fiber.Ctx) error
	AdminExport(c fiber.Ctx) error
	AdminClear(c fiber.Ctx) error
	AdminSummary(c fiber.Ctx) error
}

// AnalyticsHandler records page views and clicks and serves them to admins
type AnalyticsHandler struct {
	baseHandler
	flow businessflow.AnalyticsFlow
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(flow businessflow.AnalyticsFlow) *AnalyticsHandler {
	return &AnalyticsHandler{baseHandler: newBaseHandler(), flow: flow}
}

// PageView Analytics
// @Summary Record a page view
// @Description Adds one to today's (UTC) counter of the page.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body dto.PageViewRequest true "Page view"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "page is required"
// @Router /api/analytics/pageview [post]
func (h *AnalyticsHandler) PageView(c fiber.Ctx) error {
	var req dto.PageViewRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ua := services.ParseUserAgent(c.Get("User-Agent"))

	ctx, cancel := h.createRequestContext(c, "/api/analytics/pageview")
	defer cancel()

	if err := h.flow.RecordPageView(ctx, &req); err != nil {
		return err
	}
	middleware.RecordPageView(ua.Device)

	return h.SuccessResponse(c, fiber.StatusOK, "", nil)
}

// Event Analytics
// @Summary Record a click
// @Description Adds one to today's (UTC) counter of the element on the page.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body dto.AnalyticsEventRequest true "Click event"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "eventType, elementId and page are required"
// @Router /api/analytics/event [post]
func (h *AnalyticsHandler) Event(c fiber.Ctx) error {
	var req dto.AnalyticsEventRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/analytics/event")
	defer cancel()

	if err := h.flow.RecordEvent(ctx, &req); err != nil {
		return err
	}
	middleware.RecordClickEvent(utils.Truncate(req.EventType, 32))

	return h.SuccessResponse(c, fiber.StatusOK, "", nil)
}

// AdminExport Analytics
// @Summary Export analytics
// @Description Page views and clicks between startDate and endDate (YYYY-MM-DD or RFC3339). A date-only endDate covers that whole day.
// @Tags Admin Analytics
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string false "Start (default epoch)"
// @Param endDate query string false "End, inclusive (default now)"
// @Param format query string false "json (default) or xlsx"
// @Success 200 {object} dto.AnalyticsExport
// @Failure 400 {object} dto.APIResponse "Invalid date"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/analytics/export [get]
func (h *AnalyticsHandler) AdminExport(c fiber.Ctx) error {
	var q dto.AnalyticsExportQuery
	if err := h.bindQuery(c, &q); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/analytics/export")
	defer cancel()

	file, err := h.flow.Export(ctx, &q)
	if err != nil {
		return err
	}
	return sendDownload(c, file)
}

// AdminClear Analytics
// @Summary Delete all analytics
// @Tags Admin Analytics
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsClearResult}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/analytics/clear [delete]
func (h *AnalyticsHandler) AdminClear(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/admin/analytics/clear")
	defer cancel()

	result, err := h.flow.Clear(ctx)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Analytics data cleared", result)
}

// AdminSummary Analytics
// @Summary Analytics totals for the dashboard
// @Tags Admin Analytics
// @Produce json
// @Param days query integer false "Days back, today included (default 30, max 365)"
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsSummary}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/analytics/summary [get]
func (h *AnalyticsHandler) AdminSummary(c fiber.Ctx) error {
	days := businessflow.DefaultSummaryDays
	if daysStr := c.Query("days"); daysStr != "" {
		n, err := strconv.Atoi(daysStr)
		if err != nil {
			return businessflow.NewValidationError("INVALID_DAYS", "days must be a number", err)
		}
		days = n
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/analytics/summary")
	defer cancel()

	result, err := h.flow.Summary(ctx, days)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", result)
}
