package middleware

import (
	"net/url"
	"strings"

	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Locals keys set by the admin gate
const (
	LocalsSessionClaims = "session_claims"
	LocalsUserID        = "user_id"
)

const (
	adminPagePath  = "/admin"
	adminLoginPath = "/admin/login"
)

// AdminGate resolves the dashboard session from the session cookie or a Bearer header
// and guards the dashboard pages and the admin API.
type AdminGate struct {
	authFlow   businessflow.AdminAuthFlow
	cookieName string
}

// NewAdminGate creates a new admin gate
func NewAdminGate(authFlow businessflow.AdminAuthFlow, cookieName string) *AdminGate {
	return &AdminGate{authFlow: authFlow, cookieName: cookieName}
}

// SessionToken returns the raw session token of the request; the cookie wins over the header
func (g *AdminGate) SessionToken(c fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(g.cookieName)); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func (g *AdminGate) adminClaims(c fiber.Ctx) (*services.SessionClaims, error) {
	claims, err := g.authFlow.Authenticate(c.Context(), g.SessionToken(c))
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return claims, businessflow.NewAuthorizationError("ADMIN_ROLE_REQUIRED", "Admin access required", businessflow.ErrAdminRoleRequired)
	}
	return claims, nil
}

// PageGate guards /admin*. Signed-in admins are sent from the login page to the dashboard;
// everyone else is sent to the login page with the original URL as callbackUrl.
func (g *AdminGate) PageGate() fiber.Handler {
	return func(c fiber.Ctx) error {
		path := strings.TrimRight(c.Path(), "/")
		_, err := g.adminClaims(c)
		authorized := err == nil

		if path == adminLoginPath {
			if authorized {
				return c.Redirect().Status(fiber.StatusFound).To(adminPagePath)
			}
			return c.Next()
		}

		if !authorized {
			target := adminLoginPath + "?callbackUrl=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect().Status(fiber.StatusFound).To(target)
		}
		return c.Next()
	}
}

// APIGate guards /api/admin*: no valid session is 401, a valid session without the ADMIN role is 403
func (g *AdminGate) APIGate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, err := g.adminClaims(c)
		if err != nil {
			if claims != nil {
				zap.L().Warn("admin api denied for non-admin session",
					zap.Uint("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("path", c.Path()))
			}
			return err
		}

		c.Locals(LocalsSessionClaims, claims)
		c.Locals(LocalsUserID, claims.UserID)
		return c.Next()
	}
}
