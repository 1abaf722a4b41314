package handlers

import (
	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
)

// WaitlistHandlerInterface defines the contract for waitlist handlers
type WaitlistHandlerInterface interface {
	Join(c fiber.Ctx) error
	AdminList(c fiber.Ctx) error
	AdminDelete(c fiber.Ctx) error
	AdminExport(c fiber.Ctx) error
}

// WaitlistHandler handles waitlist signups and their admin views
type WaitlistHandler struct {
	baseHandler
	flow businessflow.WaitlistFlow
}

// NewWaitlistHandler creates a new waitlist handler
func NewWaitlistHandler(flow businessflow.WaitlistFlow) *WaitlistHandler {
	return &WaitlistHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Join Waitlist
// @Summary Join the waitlist
// @Description Add a visitor to the waitlist. The email address may only be used once.
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param request body dto.JoinWaitlistRequest true "Signup"
// @Success 200 {object} dto.APIResponse "Successfully joined the waitlist!"
// @Failure 400 {object} dto.APIResponse "Name missing or email invalid"
// @Failure 409 {object} dto.APIResponse "Email already exists in waitlist"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/waitlist [post]
func (h *WaitlistHandler) Join(c fiber.Ctx) error {
	var req dto.JoinWaitlistRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/waitlist")
	defer cancel()

	if _, err := h.flow.Join(ctx, &req, clientMetadata(c)); err != nil {
		return err
	}
	middleware.RecordWaitlistSignup()

	return h.SuccessResponse(c, fiber.StatusOK, businessflow.WaitlistJoinedMessage, nil)
}

// AdminList Waitlist
// @Summary List waitlist entries
// @Description Newest first, with the total count. search matches name, email and reason.
// @Tags Admin Waitlist
// @Produce json
// @Param search query string false "Substring filter"
// @Param limit query integer false "Page size (default 50, max 500)"
// @Param offset query integer false "Offset (default 0)"
// @Success 200 {object} dto.APIResponse{data=dto.AdminWaitlistListResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Router /api/admin/waitlist [get]
func (h *WaitlistHandler) AdminList(c fiber.Ctx) error {
	var q dto.ListQuery
	if err := h.bindQuery(c, &q); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/waitlist")
	defer cancel()

	result, err := h.flow.AdminList(ctx, &q)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waitlist retrieved successfully", result)
}

// AdminDelete Waitlist entry
// @Summary Delete a waitlist entry
// @Tags Admin Waitlist
// @Produce json
// @Param id path integer true "Entry ID"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Router /api/admin/waitlist/{id} [delete]
func (h *WaitlistHandler) AdminDelete(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/waitlist/:id")
	defer cancel()

	if err := h.flow.AdminDelete(ctx, id); err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waitlist entry deleted", fiber.Map{"id": id})
}

// AdminExport Waitlist
// @Summary Export the waitlist
// @Tags Admin Waitlist
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "json (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} dto.APIResponse "Unknown format"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/waitlist/export [get]
func (h *WaitlistHandler) AdminExport(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/admin/waitlist/export")
	defer cancel()

	file, err := h.flow.Export(ctx, c.Query("format"))
	if err != nil {
		return err
	}
	return sendDownload(c, file)
}
