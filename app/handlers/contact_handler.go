package handlers

import (
	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ContactHandlerInterface defines the contract for contact form handlers
type ContactHandlerInterface interface {
	Submit(c fiber.Ctx) error
	AdminList(c fiber.Ctx) error
	AdminUpdateStatus(c fiber.Ctx) error
}

// ContactHandler handles contact form submissions
type ContactHandler struct {
	baseHandler
	flow businessflow.ContactFlow
}

// NewContactHandler creates a new contact handler
func NewContactHandler(flow businessflow.ContactFlow) *ContactHandler {
	return &ContactHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Submit Contact form
// @Summary Submit the contact form
// @Description Stores the message and notifies the team. emailDelivered is false when no email provider is configured.
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body dto.ContactRequest true "Contact form"
// @Success 200 {object} dto.APIResponse{data=dto.ContactSubmitResult}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/contact [post]
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	var req dto.ContactRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/contact")
	defer cancel()

	result, err := h.flow.Submit(ctx, &req, clientMetadata(c))
	if err != nil {
		return err
	}
	middleware.RecordContactSubmission(result.EmailDelivered)

	return h.SuccessResponse(c, fiber.StatusOK, "Thanks for reaching out. We will get back to you soon.", result)
}

// AdminList Contact forms
// @Summary List contact form submissions
// @Tags Admin Contact
// @Produce json
// @Param status query string false "NEW, RESPONDED or CLOSED"
// @Param limit query integer false "Page size (default 50, max 500)"
// @Param offset query integer false "Offset (default 0)"
// @Success 200 {object} dto.APIResponse{data=dto.ContactListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid status"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/contact [get]
func (h *ContactHandler) AdminList(c fiber.Ctx) error {
	var q dto.ContactListQuery
	if err := c.Bind().Query(&q); err != nil {
		return businessflow.NewValidationError("INVALID_QUERY", "Invalid query parameters", err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/contact")
	defer cancel()

	// status is validated by the flow, which is case-insensitive
	result, err := h.flow.AdminList(ctx, &q)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", result)
}

// AdminUpdateStatus Contact form
// @Summary Set the status of a contact form
// @Tags Admin Contact
// @Accept json
// @Produce json
// @Param id path integer true "Contact form ID"
// @Param request body dto.UpdateContactStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.ContactFormDTO}
// @Failure 400 {object} dto.APIResponse "Invalid status"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Contact form not found"
// @Router /api/admin/contact/{id} [patch]
func (h *ContactHandler) AdminUpdateStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateContactStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return businessflow.NewValidationError("INVALID_REQUEST", "Invalid request body", err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/contact/:id")
	defer cancel()

	form, err := h.flow.UpdateStatus(ctx, id, &req)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Status updated", form)
}
