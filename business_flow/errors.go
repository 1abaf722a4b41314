// Package businessflow contains the use cases of the AetherInc backend
package businessflow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aetherinc/aether-waitlist/repository"
)

// ErrorType is the client-visible category of a failure
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeAuthentication  ErrorType = "AUTHENTICATION"
	ErrorTypeAuthorization   ErrorType = "AUTHORIZATION"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeServer          ErrorType = "SERVER_ERROR"
	ErrorTypeExternalService ErrorType = "EXTERNAL_SERVICE"
	ErrorTypeRateLimit       ErrorType = "RATE_LIMIT"
)

// Business flow error constants
var (
	// Waitlist
	ErrNameRequired           = errors.New("name is required")
	ErrInvalidEmail           = errors.New("valid email is required")
	ErrEmailAlreadyInWaitlist = errors.New("email already exists in waitlist")
	ErrWaitlistEntryNotFound  = errors.New("waitlist entry not found")

	// Tools
	ErrToolFieldsRequired = errors.New("name, description and category are required")
	ErrToolNotFound       = errors.New("tool not found")
	ErrToolNameExists     = errors.New("tool name already exists")
	ErrImportFileInvalid  = errors.New("import file is invalid")

	// Analytics
	ErrAnalyticsFieldsRequired = errors.New("required analytics fields are missing")
	ErrInvalidDateRange        = errors.New("invalid date range")

	// Contact
	ErrContactFieldsRequired = errors.New("name, email and message are required")
	ErrInvalidContactStatus  = errors.New("invalid contact status")
	ErrContactFormNotFound   = errors.New("contact form not found")

	// Terminal chat
	ErrTerminalChatFieldsRequired = errors.New("sessionId, role and content are required")

	// Chat proxy
	ErrChatMessageRequired = errors.New("message is required")
	ErrChatUnavailable     = errors.New("chat is unavailable")
	ErrChatUpstreamFailed  = errors.New("chat upstream failed")

	// Auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAdminRoleRequired  = errors.New("admin role required")
	ErrSessionRequired    = errors.New("session required")
	ErrCaptchaRequired    = errors.New("captcha is required")
	ErrCaptchaInvalid     = errors.New("captcha verification failed")
	ErrCaptchaDisabled    = errors.New("captcha is disabled")
)

// BusinessError is a typed failure a handler can return as-is; the error envelope
// turns it into the response.
type BusinessError struct {
	Type    ErrorType
	Code    string
	Message string
	Details any
	Err     error
	// Status overrides the status implied by Type when non-zero.
	Status int
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error type to its response status
func (e *BusinessError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return StatusForType(e.Type)
}

// WithDetails attaches client-visible details
func (e *BusinessError) WithDetails(details any) *BusinessError {
	e.Details = details
	return e
}

// StatusForType returns the fixed HTTP status of an error type
func StatusForType(t ErrorType) int {
	switch t {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeExternalService:
		return http.StatusBadGateway
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// TypeForStatus is the inverse of StatusForType for statuses raised outside the flows
func TypeForStatus(status int) ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType:
		return ErrorTypeValidation
	case http.StatusUnauthorized:
		return ErrorTypeAuthentication
	case http.StatusForbidden:
		return ErrorTypeAuthorization
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorTypeExternalService
	default:
		return ErrorTypeServer
	}
}

func NewBusinessError(errType ErrorType, code, message string, err error) *BusinessError {
	return &BusinessError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeValidation, code, message, err)
}

func NewAuthenticationError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeAuthentication, code, message, err)
}

func NewAuthorizationError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeAuthorization, code, message, err)
}

func NewNotFoundError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeNotFound, code, message, err)
}

func NewConflictError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeConflict, code, message, err)
}

func NewServerError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeServer, code, message, err)
}

func NewExternalServiceError(code, message string, err error) *BusinessError {
	return NewBusinessError(ErrorTypeExternalService, code, message, err)
}

// GenericServerMessage is shown for failures that carry no safe message
const GenericServerMessage = "An unexpected error occurred"

// ToBusinessError normalizes any error into a BusinessError:
// typed errors pass through, recognized store errors are mapped, the rest become a generic 500.
func ToBusinessError(err error) *BusinessError {
	if err == nil {
		return nil
	}
	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}

	kind, code := repository.ClassifyError(err)
	switch kind {
	case repository.StoreErrorDuplicate:
		return NewConflictError("DUPLICATE_RECORD", "A record with the same unique value already exists", err)
	case repository.StoreErrorNotFound:
		return NewNotFoundError("RECORD_NOT_FOUND", "Record not found", err)
	case repository.StoreErrorOther:
		msg := "Database error"
		if code != "" {
			msg = fmt.Sprintf("Database error (%s)", code)
		}
		return NewServerError("DATABASE_ERROR", msg, err)
	}

	return NewServerError("INTERNAL_ERROR", GenericServerMessage, err)
}

func IsNameRequired(err error) bool {
	return errors.Is(err, ErrNameRequired)
}

func IsInvalidEmail(err error) bool {
	return errors.Is(err, ErrInvalidEmail)
}

func IsEmailAlreadyInWaitlist(err error) bool {
	return errors.Is(err, ErrEmailAlreadyInWaitlist)
}

func IsWaitlistEntryNotFound(err error) bool {
	return errors.Is(err, ErrWaitlistEntryNotFound)
}

func IsToolFieldsRequired(err error) bool {
	return errors.Is(err, ErrToolFieldsRequired)
}

func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

func IsToolNameExists(err error) bool {
	return errors.Is(err, ErrToolNameExists)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

func IsInvalidContactStatus(err error) bool {
	return errors.Is(err, ErrInvalidContactStatus)
}

func IsContactFormNotFound(err error) bool {
	return errors.Is(err, ErrContactFormNotFound)
}

func IsChatUnavailable(err error) bool {
	return errors.Is(err, ErrChatUnavailable)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAdminRoleRequired(err error) bool {
	return errors.Is(err, ErrAdminRoleRequired)
}
