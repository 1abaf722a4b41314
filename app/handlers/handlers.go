// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

const defaultRequestTimeout = 30 * time.Second

// baseHandler carries what every handler needs: a validator and the response helpers.
// Failures are returned as errors and rendered by the error envelope.
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: NewValidator()}
}

// NewValidator returns a validator with the custom tags used by the request DTOs
func NewValidator() *validator.Validate {
	v := validator.New()
	// addresses are trimmed before storage, so surrounding blanks are accepted here
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return utils.IsBasicEmail(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *baseHandler) bindJSON(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return businessflow.NewValidationError("INVALID_REQUEST", "Invalid request body", err)
	}
	return h.validate(req)
}

func (h *baseHandler) bindQuery(c fiber.Ctx, req any) error {
	if err := c.Bind().Query(req); err != nil {
		return businessflow.NewValidationError("INVALID_QUERY", "Invalid query parameters", err)
	}
	return h.validate(req)
}

// validate reports the first failing rule as the message and every failure in details
func (h *baseHandler) validate(req any) error {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return businessflow.NewValidationError("VALIDATION_ERROR", "Validation failed", err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return businessflow.NewValidationError("VALIDATION_ERROR", messages[0], err).WithDetails(messages)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email", "basic_email":
		return "Valid email is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// createRequestContext derives the flow context from the request with a timeout and request-scoped values
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context(), defaultRequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestid.FromContext(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, clientIP(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

// clientIP is the caller as reported by the proxy in front of us
func clientIP(c fiber.Ctx) string {
	return utils.ClientIPFromHeaders(c.Get("X-Forwarded-For"), c.Get("X-Real-IP"))
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	md := businessflow.NewClientMetadata(clientIP(c), c.Get("User-Agent"))
	md.SetRequestID(requestid.FromContext(c))
	return md
}

func parseIDParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, businessflow.NewValidationError("INVALID_ID", "Invalid "+name, err)
	}
	return uint(id), nil
}

// sendDownload writes an export as an attachment
func sendDownload(c fiber.Ctx, file *businessflow.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", file.Filename))
	return c.Status(fiber.StatusOK).Send(file.Body)
}
