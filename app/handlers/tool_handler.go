package handlers

import (
	"bytes"
	"io"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
)

// maxImportFileSize caps an uploaded catalog file
const maxImportFileSize = 2 * 1024 * 1024

// ToolHandlerInterface defines the contract for tools catalog handlers
type ToolHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	AdminList(c fiber.Ctx) error
	AdminGet(c fiber.Ctx) error
	AdminCreate(c fiber.Ctx) error
	AdminUpdate(c fiber.Ctx) error
	AdminDelete(c fiber.Ctx) error
	AdminImport(c fiber.Ctx) error
}

// ToolHandler serves the public tools catalog and its admin maintenance
type ToolHandler struct {
	baseHandler
	flow businessflow.ToolFlow
}

// NewToolHandler creates a new tool handler
func NewToolHandler(flow businessflow.ToolFlow) *ToolHandler {
	return &ToolHandler{baseHandler: newBaseHandler(), flow: flow}
}

// List Tools
// @Summary List active tools
// @Description One page of active tools ordered by name, with the category and type facets.
// @Tags Tools
// @Produce json
// @Param category query string false "Exact category"
// @Param type query string false "Exact tag"
// @Param search query string false "Case-insensitive substring of name, description or category"
// @Param limit query integer false "Page size (default 50, max 100)"
// @Param offset query integer false "Offset (default 0)"
// @Success 200 {object} dto.ToolListResponse
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Router /api/tools [get]
func (h *ToolHandler) List(c fiber.Ctx) error {
	var q dto.ListToolsQuery
	if err := h.bindQuery(c, &q); err != nil {
		return err
	}
	// the public listing never exposes inactive tools
	q.IsActive = nil

	ctx, cancel := h.createRequestContext(c, "/api/tools")
	defer cancel()

	result, err := h.flow.List(ctx, &q)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Get Tool
// @Summary Get an active tool
// @Tags Tools
// @Produce json
// @Param id path integer true "Tool ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToolDTO}
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Router /api/tools/{id} [get]
func (h *ToolHandler) Get(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/tools/:id")
	defer cancel()

	tool, err := h.flow.Get(ctx, id)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", tool)
}

// AdminList Tools
// @Summary List all tools
// @Description Like the public listing but includes inactive tools; isActive narrows it.
// @Tags Admin Tools
// @Produce json
// @Param category query string false "Exact category"
// @Param type query string false "Exact tag"
// @Param search query string false "Substring filter"
// @Param isActive query boolean false "Active state"
// @Param limit query integer false "Page size (default 50, max 500)"
// @Param offset query integer false "Offset (default 0)"
// @Success 200 {object} dto.ToolListResponse
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/tools [get]
func (h *ToolHandler) AdminList(c fiber.Ctx) error {
	var q dto.ListToolsQuery
	if err := h.bindQuery(c, &q); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools")
	defer cancel()

	result, err := h.flow.AdminList(ctx, &q)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// AdminGet Tool
// @Summary Get any tool
// @Tags Admin Tools
// @Produce json
// @Param id path integer true "Tool ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToolDTO}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Router /api/admin/tools/{id} [get]
func (h *ToolHandler) AdminGet(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools/:id")
	defer cancel()

	tool, err := h.flow.AdminGet(ctx, id)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", tool)
}

// AdminCreate Tool
// @Summary Create a tool
// @Tags Admin Tools
// @Accept json
// @Produce json
// @Param request body dto.AdminToolRequest true "Tool"
// @Success 201 {object} dto.APIResponse{data=dto.ToolDTO}
// @Failure 400 {object} dto.APIResponse "Name, description and category are required"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "A tool with this name already exists"
// @Router /api/admin/tools [post]
func (h *ToolHandler) AdminCreate(c fiber.Ctx) error {
	var req dto.AdminToolRequest
	if err := c.Bind().JSON(&req); err != nil {
		return businessflow.NewValidationError("INVALID_REQUEST", "Invalid request body", err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools")
	defer cancel()

	// required fields are checked by the flow so the message stays the same for every caller
	tool, err := h.flow.Create(ctx, &req)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Tool created successfully", tool)
}

// AdminUpdate Tool
// @Summary Replace a tool
// @Tags Admin Tools
// @Accept json
// @Produce json
// @Param id path integer true "Tool ID"
// @Param request body dto.AdminToolRequest true "Tool"
// @Success 200 {object} dto.APIResponse{data=dto.ToolDTO}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Failure 409 {object} dto.APIResponse "A tool with this name already exists"
// @Router /api/admin/tools/{id} [put]
func (h *ToolHandler) AdminUpdate(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AdminToolRequest
	if err := c.Bind().JSON(&req); err != nil {
		return businessflow.NewValidationError("INVALID_REQUEST", "Invalid request body", err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools/:id")
	defer cancel()

	tool, err := h.flow.Update(ctx, id, &req)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tool updated successfully", tool)
}

// AdminDelete Tool
// @Summary Delete a tool
// @Tags Admin Tools
// @Produce json
// @Param id path integer true "Tool ID"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Router /api/admin/tools/{id} [delete]
func (h *ToolHandler) AdminDelete(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools/:id")
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tool deleted successfully", fiber.Map{"id": id})
}

// AdminImport Tools
// @Summary Import tools from a TSV file
// @Description Header row names the columns (name, category, type, license, description, url, pricing, isActive). Rows upsert by name.
// @Tags Admin Tools
// @Accept mpfd
// @Produce json
// @Param file formData file true "Tab-separated catalog"
// @Success 200 {object} dto.APIResponse{data=dto.ToolImportResult}
// @Failure 400 {object} dto.APIResponse "Missing or unreadable file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/tools/import [post]
func (h *ToolHandler) AdminImport(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return businessflow.NewValidationError("IMPORT_FILE_REQUIRED", "A file field named \"file\" is required", err)
	}
	if fileHeader.Size > maxImportFileSize {
		return businessflow.NewValidationError("IMPORT_FILE_TOO_LARGE", "Import file must be at most 2MB", nil)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return businessflow.NewValidationError("IMPORT_FILE_INVALID", "Failed to read uploaded file", err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxImportFileSize+1))
	if err != nil {
		return businessflow.NewValidationError("IMPORT_FILE_INVALID", "Failed to read uploaded file", err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/tools/import")
	defer cancel()

	result, err := h.flow.Import(ctx, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Import completed", result)
}
