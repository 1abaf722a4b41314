// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aetherinc/aether-waitlist/app/handlers"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/config"
	_ "github.com/aetherinc/aether-waitlist/docs"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Waitlist  handlers.WaitlistHandlerInterface
	Tools     handlers.ToolHandlerInterface
	Analytics handlers.AnalyticsHandlerInterface
	Contact   handlers.ContactHandlerInterface
	Chat      handlers.ChatHandlerInterface
	Auth      handlers.AuthHandlerInterface
	Health    *handlers.HealthHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      *config.Config
	handlers Handlers
	gate     *middleware.AdminGate
	logger   *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.Config, h Handlers, gate *middleware.AdminGate, log *zap.Logger) Router {
	if log == nil {
		log = zap.L()
	}
	fiberCfg := fiber.Config{
		AppName:      "AetherInc API",
		ServerHeader: "AetherInc",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	}
	// c.IP() reads the proxy header only when the peer is a listed proxy
	if len(cfg.Server.TrustedProxies) > 0 && cfg.Server.ProxyHeader != "" {
		fiberCfg.TrustProxy = true
		fiberCfg.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: cfg.Server.TrustedProxies}
		fiberCfg.ProxyHeader = cfg.Server.ProxyHeader
		fiberCfg.EnableIPValidation = true
	}
	app := fiber.New(fiberCfg)

	return &FiberRouter{
		app:      app,
		cfg:      cfg,
		handlers: h,
		gate:     gate,
		logger:   log,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	// Probes and docs sit outside the rate limits
	r.app.Get("/health", r.handlers.Health.Health)
	r.app.Get("/api/health", r.handlers.Health.Health)
	r.app.Get("/api/swagger.json", r.serveSwaggerJSON)
	if r.cfg.Server.EnableMetrics {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	window := r.cfg.Security.RateLimitWindow
	api := r.app.Group("/api", newLimiter(r.cfg.Security.GlobalRateLimit, window))
	publicWrites := newLimiter(r.cfg.Security.PublicRateLimit, window)

	// Public site API
	api.Post("/waitlist", publicWrites, r.handlers.Waitlist.Join)
	api.Get("/tools", r.handlers.Tools.List)
	api.Get("/tools/:id", r.handlers.Tools.Get)
	api.Post("/analytics/pageview", r.handlers.Analytics.PageView)
	api.Post("/analytics/event", r.handlers.Analytics.Event)
	api.Post("/contact", publicWrites, r.handlers.Contact.Submit)
	api.Post("/chat", newLimiter(r.cfg.Security.ChatRateLimit, window), r.handlers.Chat.Chat)
	api.Post("/terminal-chat", r.handlers.Chat.LogTerminalChat)

	// Dashboard authentication
	auth := api.Group("/auth")
	auth.Get("/captcha", r.handlers.Auth.Captcha)
	auth.Post("/login", newLimiter(r.cfg.Security.AuthRateLimit, window), r.handlers.Auth.Login)
	auth.Post("/logout", r.handlers.Auth.Logout)
	auth.Get("/session", r.handlers.Auth.Session)

	// Admin API: every route requires an admin session
	admin := api.Group("/admin", r.gate.APIGate())

	admin.Get("/tools", r.handlers.Tools.AdminList)
	admin.Post("/tools", r.handlers.Tools.AdminCreate)
	admin.Post("/tools/import", r.handlers.Tools.AdminImport)
	admin.Get("/tools/:id", r.handlers.Tools.AdminGet)
	admin.Put("/tools/:id", r.handlers.Tools.AdminUpdate)
	admin.Delete("/tools/:id", r.handlers.Tools.AdminDelete)

	admin.Get("/waitlist", r.handlers.Waitlist.AdminList)
	admin.Get("/waitlist/export", r.handlers.Waitlist.AdminExport)
	admin.Delete("/waitlist/:id", r.handlers.Waitlist.AdminDelete)

	admin.Get("/analytics/export", r.handlers.Analytics.AdminExport)
	admin.Get("/analytics/summary", r.handlers.Analytics.AdminSummary)
	admin.Delete("/analytics/clear", r.handlers.Analytics.AdminClear)

	admin.Get("/contact", r.handlers.Contact.AdminList)
	admin.Patch("/contact/:id", r.handlers.Contact.AdminUpdateStatus)

	admin.Get("/terminal-chats", r.handlers.Chat.AdminListTerminalChats)
	admin.Delete("/terminal-chats", r.handlers.Chat.AdminClearTerminalChats)

	// Dashboard pages
	pageGate := r.gate.PageGate()
	r.app.Get("/admin/login", pageGate, r.serveLoginPage)
	r.app.Get("/admin", pageGate, r.serveDashboardPage)
	r.app.Get("/admin/*", pageGate, r.serveDashboardPage)

	r.logger.Info("routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: fiber.HeaderXRequestID,
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	// Security headers go on before anything can fail
	for _, h := range middleware.SecurityHeaders(r.cfg.Security) {
		r.app.Use(h)
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("panic recovered",
				zap.String("request_id", requestid.FromContext(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("panic", e),
				zap.Stack("stack"))
		},
	}))

	if r.cfg.Logging.AccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == "/api/health" || c.Path() == "/metrics"
			},
		}))
	}

	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{fiber.HeaderXRequestID, fiber.HeaderContentDisposition},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}
}

// newLimiter limits requests per client IP; max <= 0 disables it
func newLimiter(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return businessflow.NewBusinessError(businessflow.ErrorTypeRateLimit, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.", nil)
		},
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.logger.Info("starting server", zap.String("address", address))
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// serveSwaggerJSON serves the registered API description
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return businessflow.NewServerError("SWAGGER_LOAD_ERROR", "Failed to load API documentation", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

func (r *FiberRouter) serveLoginPage(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendString(fmt.Sprintf(loginPageHTML, r.cfg.App.SiteURL))
}

func (r *FiberRouter) serveDashboardPage(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendString(dashboardPageHTML)
}
