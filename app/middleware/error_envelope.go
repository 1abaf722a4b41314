// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
)

// ErrorHandler renders every error a handler or middleware returns as the JSON error envelope.
// It is installed as fiber's ErrorHandler, so it also sees router 404/405 and body-limit errors.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.L()
	}
	return func(c fiber.Ctx, err error) error {
		be := toEnvelopeError(err)
		status := be.HTTPStatus()

		fields := []zap.Field{
			zap.String("request_id", requestid.FromContext(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("type", string(be.Type)),
			zap.String("code", be.Code),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Warn("request rejected", fields...)
		}

		return c.Status(status).JSON(dto.APIResponse{
			Success: false,
			Message: be.Message,
			Error: &dto.ErrorDetail{
				Type:    string(be.Type),
				Code:    be.Code,
				Message: be.Message,
				Details: be.Details,
			},
		})
	}
}

// toEnvelopeError maps fiber errors by status and everything else through the business error mapping
func toEnvelopeError(err error) *businessflow.BusinessError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		t := businessflow.TypeForStatus(fe.Code)
		be := businessflow.NewBusinessError(t, fiberErrorCode(fe.Code), fe.Message, err)
		be.Status = fe.Code
		return be
	}
	be := businessflow.ToBusinessError(err)
	if be.Type == businessflow.ErrorTypeServer && be.Code == "INTERNAL_ERROR" {
		be.Message = businessflow.GenericServerMessage
	}
	return be
}

func fiberErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		return "HTTP_" + strconv.Itoa(status)
	}
}

func statusFromError(err error) int {
	return toEnvelopeError(err).HTTPStatus()
}
