package utils

import (
	"time"
)

// Session time constants
const (
	// SessionTTL is the default lifetime of an admin session cookie (24 hours)
	SessionTTL = 24 * time.Hour

	// CaptchaTTL is how long a rotate challenge stays valid
	CaptchaTTL = 2 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400

	// PermissionsPolicy disables browser features the site never uses
	PermissionsPolicy = "camera=(), microphone=(), geolocation=(), interest-cohort=()"
)

// Listing limits
const (
	DefaultToolsLimit        = 50
	MaxToolsLimit            = 100
	DefaultAdminListLimit    = 50
	MaxAdminListLimit        = 500
	DefaultTerminalChatLimit = 100
	MaxTerminalChatLimit     = 1000
)

// Roles
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// UnknownIP is recorded when no forwarded address is present
const UnknownIP = "unknown"
