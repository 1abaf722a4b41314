package middleware

import (
	"github.com/aetherinc/aether-waitlist/config"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/helmet"
)

// SecurityHeaders sets the browser hardening headers. It must run before any handler
// so that error responses carry the same headers.
func SecurityHeaders(cfg config.SecurityConfig) []fiber.Handler {
	return []fiber.Handler{
		helmet.New(helmet.Config{
			XSSProtection:             "1; mode=block",
			ContentTypeNosniff:        "nosniff",
			XFrameOptions:             "DENY",
			HSTSMaxAge:                cfg.HSTSMaxAge,
			HSTSExcludeSubdomains:     false,
			ContentSecurityPolicy:     cfg.CSPPolicy,
			ReferrerPolicy:            cfg.ReferrerPolicy,
			CrossOriginOpenerPolicy:   "same-origin",
			CrossOriginResourcePolicy: "same-origin",
			OriginAgentCluster:        "?1",
			XDNSPrefetchControl:       "off",
			XDownloadOptions:          "noopen",
			XPermittedCrossDomain:     "none",
		}),
		permissionsPolicy,
	}
}

func permissionsPolicy(c fiber.Ctx) error {
	c.Set("Permissions-Policy", utils.PermissionsPolicy)
	return c.Next()
}
