package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/handlers"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	"github.com/aetherinc/aether-waitlist/app/router"
	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/config"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app *fiber.App
	cfg *config.Config
}

func newTestConfig() *config.Config {
	cfg := config.FromEnv()
	cfg.Session.Secret = "router-test-secret-0123456789abcdef"
	cfg.Session.CookieName = "aether_session"
	cfg.Server.EnableMetrics = false
	cfg.Server.EnableCompression = false
	cfg.Logging.AccessLog = false
	cfg.Security.GlobalRateLimit = 0
	cfg.Security.PublicRateLimit = 0
	cfg.Security.AuthRateLimit = 0
	cfg.Security.ChatRateLimit = 0
	cfg.Security.RateLimitWindow = time.Minute
	cfg.App.SiteURL = "http://localhost:8080"
	return cfg
}

func newTestServer(t *testing.T, testDB *testingutil.TestDB, cfg *config.Config) *testServer {
	t.Helper()
	db := testDB.DB

	tokenService, err := services.NewTokenService(cfg.Session.TTL, cfg.Session.Issuer, cfg.Session.Audience, cfg.Session.Secret, services.NewMemoryRevocationStore())
	require.NoError(t, err)

	chatRepo := repository.NewTerminalChatRepository(db)
	authFlow := businessflow.NewAdminAuthFlow(repository.NewUserRepository(db), tokenService, nil)
	gate := middleware.NewAdminGate(authFlow, cfg.Session.CookieName)

	r := router.NewFiberRouter(cfg, router.Handlers{
		Waitlist:  handlers.NewWaitlistHandler(businessflow.NewWaitlistFlow(repository.NewWaitlistRepository(db))),
		Tools:     handlers.NewToolHandler(businessflow.NewToolFlow(repository.NewToolRepository(db), db)),
		Analytics: handlers.NewAnalyticsHandler(businessflow.NewAnalyticsFlow(repository.NewAnalyticsRepository(db))),
		Contact:   handlers.NewContactHandler(businessflow.NewContactFlow(repository.NewContactFormRepository(db), nil, "")),
		Chat:      handlers.NewChatHandler(businessflow.NewChatFlow(nil, chatRepo, ""), businessflow.NewTerminalChatFlow(chatRepo)),
		Auth:      handlers.NewAuthHandler(authFlow, gate, handlers.SessionCookieConfig{Name: cfg.Session.CookieName, Secure: true}),
		Health:    handlers.NewHealthHandler(db, nil, "test"),
	}, gate, zap.NewNop())
	r.SetupRoutes()

	return &testServer{app: r.GetApp(), cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) dto.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var env dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+testingutil.TestPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == s.cfg.Session.CookieName {
			return c.Value
		}
	}
	t.Fatal("login did not set the session cookie")
	return ""
}

func TestPublicEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		srv := newTestServer(t, testDB, newTestConfig())

		t.Run("WaitlistJoinThenConflict", func(t *testing.T) {
			body := `{"name":"Ada","email":"ada@example.com","earlyAccess":true}`
			resp := srv.do(t, http.MethodPost, "/api/waitlist", body, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.True(t, env.Success)
			assert.Equal(t, businessflow.WaitlistJoinedMessage, env.Message)

			resp = srv.do(t, http.MethodPost, "/api/waitlist", body, nil)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
			env = decodeEnvelope(t, resp)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "EMAIL_ALREADY_IN_WAITLIST", env.Error.Code)
			assert.Equal(t, "CONFLICT", env.Error.Type)
		})

		t.Run("WaitlistValidationMessages", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"email":"x@example.com"}`, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Name is required", decodeEnvelope(t, resp).Message)

			resp = srv.do(t, http.MethodPost, "/api/waitlist", `{"name":"X","email":"nope"}`, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Valid email is required", decodeEnvelope(t, resp).Message)
		})

		t.Run("WaitlistEmailIsTrimmed", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"name":"Lin","email":"  Lin@Example.com "}`, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			_ = resp.Body.Close()

			var entry models.WaitlistEntry
			require.NoError(t, testDB.DB.Where("email = ?", "lin@example.com").First(&entry).Error)
			assert.Equal(t, "Lin", entry.Name)
		})

		t.Run("MalformedJSON", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"name":`, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			require.NotNil(t, env.Error)
			assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
		})

		t.Run("SecurityHeaders", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/tools", "", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
			assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
			assert.NotEmpty(t, resp.Header.Get("Referrer-Policy"))
			assert.NotEmpty(t, resp.Header.Get("Permissions-Policy"))
			assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
		})

		t.Run("UnknownRouteUsesEnvelope", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/does-not-exist", "", nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "NOT_FOUND", env.Error.Type)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		})

		t.Run("ChatUnavailable", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`, nil)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		})

		t.Run("Health", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/health", "", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminAccess(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		srv := newTestServer(t, testDB, newTestConfig())
		fixtures := testingutil.NewTestFixtures(testDB)

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		viewer, err := fixtures.CreateTestUser("USER")
		require.NoError(t, err)
		entry, err := fixtures.CreateTestWaitlistEntry("Ada", "ada@example.com", time.Now())
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Create(&models.Analytics{Page: "/", Date: time.Now().UTC().Truncate(24 * time.Hour), Count: 3}).Error)

		t.Run("NoSessionIsUnauthorizedAndMutatesNothing", func(t *testing.T) {
			resp := srv.do(t, http.MethodDelete, "/api/admin/analytics/clear", "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			require.NotNil(t, env.Error)
			assert.Equal(t, "AUTHENTICATION", env.Error.Type)

			resp = srv.do(t, http.MethodDelete, "/api/admin/waitlist/"+strconv.FormatUint(uint64(entry.ID), 10), "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var views, entries int64
			require.NoError(t, testDB.DB.Model(&models.Analytics{}).Count(&views).Error)
			require.NoError(t, testDB.DB.Model(&models.WaitlistEntry{}).Count(&entries).Error)
			assert.Equal(t, int64(1), views)
			assert.Equal(t, int64(1), entries)
		})

		t.Run("GarbageTokenIsUnauthorized", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/admin/waitlist", "", map[string]string{"Authorization": "Bearer not-a-token"})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("NonAdminCannotSignIn", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/auth/login",
				`{"email":"`+viewer.Email+`","password":"`+testingutil.TestPassword+`"}`, nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Empty(t, resp.Cookies())
		})

		t.Run("WrongPassword", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/auth/login",
				`{"email":"`+admin.Email+`","password":"nope-nope"}`, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		token := srv.login(t, admin.Email)
		cookie := map[string]string{"Cookie": srv.cfg.Session.CookieName + "=" + token}

		t.Run("CookieIsHttpOnly", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/auth/login",
				`{"email":"`+admin.Email+`","password":"`+testingutil.TestPassword+`"}`, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NotEmpty(t, resp.Cookies())
			c := resp.Cookies()[0]
			assert.True(t, c.HttpOnly)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		})

		t.Run("SessionWithCookie", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/auth/session", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})

		t.Run("AdminListWithCookie", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/admin/waitlist", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.True(t, env.Success)
		})

		t.Run("AdminListWithBearer", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/admin/tools", "", map[string]string{"Authorization": "Bearer " + token})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})

		t.Run("ExportDownload", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/admin/waitlist/export?format=xlsx", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
		})

		t.Run("RejectedClearLeavesExportIntact", func(t *testing.T) {
			resp := srv.do(t, http.MethodDelete, "/api/admin/analytics/clear", "", nil)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp = srv.do(t, http.MethodGet, "/api/admin/analytics/export", "", cookie)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			defer resp.Body.Close()
			var export dto.AnalyticsExport
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&export))
			require.Len(t, export.PageViews, 1)
			assert.Equal(t, int64(3), export.PageViews[0].Count)
		})

		t.Run("ClearWithSession", func(t *testing.T) {
			resp := srv.do(t, http.MethodDelete, "/api/admin/analytics/clear", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var views int64
			require.NoError(t, testDB.DB.Model(&models.Analytics{}).Count(&views).Error)
			assert.Zero(t, views)
		})

		t.Run("LogoutRevokesSession", func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp = srv.do(t, http.MethodGet, "/api/admin/waitlist", "", cookie)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDashboardPages(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		srv := newTestServer(t, testDB, newTestConfig())
		fixtures := testingutil.NewTestFixtures(testDB)
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("AnonymousIsSentToLogin", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/admin/waitlist", "", nil)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/admin/login?callbackUrl=%2Fadmin%2Fwaitlist", resp.Header.Get("Location"))
		})

		t.Run("LoginPageRenders", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/admin/login", "", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		})

		token := srv.login(t, admin.Email)
		cookie := map[string]string{"Cookie": srv.cfg.Session.CookieName + "=" + token}

		t.Run("SignedInAdminSkipsLogin", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/admin/login", "", cookie)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/admin", resp.Header.Get("Location"))
		})

		t.Run("DashboardRenders", func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/admin", "", cookie)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRateLimit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		cfg := newTestConfig()
		cfg.Security.PublicRateLimit = 2
		srv := newTestServer(t, testDB, cfg)

		for i, email := range []string{"a@example.com", "b@example.com"} {
			resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"name":"V","email":"`+email+`"}`, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
		}

		resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"name":"V","email":"c@example.com"}`, nil)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		env := decodeEnvelope(t, resp)
		require.NotNil(t, env.Error)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", env.Error.Code)

		// reads are not counted against the write budget
		resp = srv.do(t, http.MethodGet, "/api/tools", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		return nil
	})
	require.NoError(t, err)
}

func TestToolSearch(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		srv := newTestServer(t, testDB, newTestConfig())
		fixtures := testingutil.NewTestFixtures(testDB)
		for i := 1; i <= 5; i++ {
			_, err := fixtures.CreateTestTool("Vision "+strconv.Itoa(i), "Computer Vision", true, "Detection")
			require.NoError(t, err)
		}
		_, err := fixtures.CreateTestTool("Whisper", "Speech", true, "ASR")
		require.NoError(t, err)

		resp := srv.do(t, http.MethodGet, "/api/tools?search=vision&limit=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()
		var list dto.ToolListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.True(t, list.Success)
		assert.Equal(t, int64(5), list.Total)
		assert.Len(t, list.Tools, 2)
		assert.Equal(t, 2, list.Pagination.Limit)
		assert.True(t, list.Pagination.HasMore)
		return nil
	})
	require.NoError(t, err)
}

func TestRateLimitBehindProxy(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		cfg := newTestConfig()
		cfg.Security.PublicRateLimit = 1
		// app.Test connections come from 0.0.0.0
		cfg.Server.TrustedProxies = []string{"0.0.0.0"}
		cfg.Server.ProxyHeader = fiber.HeaderXForwardedFor
		srv := newTestServer(t, testDB, cfg)

		join := func(email, forwardedFor string) int {
			resp := srv.do(t, http.MethodPost, "/api/waitlist", `{"name":"V","email":"`+email+`"}`,
				map[string]string{fiber.HeaderXForwardedFor: forwardedFor})
			_ = resp.Body.Close()
			return resp.StatusCode
		}

		assert.Equal(t, http.StatusOK, join("a@example.com", "203.0.113.10"))
		assert.Equal(t, http.StatusTooManyRequests, join("b@example.com", "203.0.113.10"))
		assert.Equal(t, http.StatusOK, join("c@example.com", "198.51.100.7"))

		var entry models.WaitlistEntry
		require.NoError(t, testDB.DB.Where("email = ?", "c@example.com").First(&entry).Error)
		assert.Equal(t, "198.51.100.7", entry.IP)
		return nil
	})
	require.NoError(t, err)
}
