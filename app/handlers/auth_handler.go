package handlers

import (
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for dashboard authentication handlers
type AuthHandlerInterface interface {
	Captcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Session(c fiber.Ctx) error
}

// SessionCookieConfig controls the session cookie the login sets
type SessionCookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles dashboard sign-in and sign-out
type AuthHandler struct {
	baseHandler
	flow   businessflow.AdminAuthFlow
	gate   *middleware.AdminGate
	cookie SessionCookieConfig
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(flow businessflow.AdminAuthFlow, gate *middleware.AdminGate, cookie SessionCookieConfig) *AuthHandler {
	return &AuthHandler{baseHandler: newBaseHandler(), flow: flow, gate: gate, cookie: cookie}
}

// Captcha
// @Summary Issue a login captcha
// @Description Rotate captcha challenge; the answer goes into captchaId/captchaAngle of the login request.
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaChallengeResponse}
// @Failure 404 {object} dto.APIResponse "Captcha is disabled"
// @Router /api/auth/captcha [get]
func (h *AuthHandler) Captcha(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/auth/captcha")
	defer cancel()

	challenge, err := h.flow.InitCaptcha(ctx)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return h.SuccessResponse(c, fiber.StatusOK, "", challenge)
}

// Login
// @Summary Admin login
// @Description Sign in with email (or username) and password. Sets the HttpOnly session cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse}
// @Failure 400 {object} dto.APIResponse "Validation or captcha error"
// @Failure 401 {object} dto.APIResponse "Invalid email or password"
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/auth/login")
	defer cancel()

	result, err := h.flow.Login(ctx, &req, clientMetadata(c))
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result.Token, result.Response.ExpiresAt)
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result.Response)
}

// Logout
// @Summary Admin logout
// @Description Revokes the session and clears the cookie. Succeeds without a session.
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/auth/logout")
	defer cancel()

	if err := h.flow.Logout(ctx, h.gate.SessionToken(c)); err != nil {
		return err
	}

	h.clearSessionCookie(c)
	return h.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

// Session
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SessionDTO}
// @Failure 401 {object} dto.APIResponse "No valid session"
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/auth/session")
	defer cancel()

	session, err := h.flow.Session(ctx, h.gate.SessionToken(c))
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", session)
}

func (h *AuthHandler) setSessionCookie(c fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
