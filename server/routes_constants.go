package server

import "strings"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin       = "/login"
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteSSOLogin    = "/auth/sso/login"
	RouteSSOCallback = "/auth/sso/callback"

	// Gated dashboard pages
	RouteDashboard = "/dashboard"
	RouteHome      = "/home"

	// Gated JSON API (proxied to the Momentam backend)
	RouteAPISession        = "/api/session"
	RouteAPIUsers          = "/api/users"
	RouteAPIPhotographers  = "/api/photographers"
	RouteAPIBookings       = "/api/bookings"
	RouteAPIPhotos         = "/api/photos"
	RouteAPIFinanceSummary = "/api/finances/summary"

	// Operational routes
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"

	// DefaultLandingPath is where authenticated users end up.
	DefaultLandingPath = RouteDashboard
)

// protectedPrefixes classify paths that require an authenticated session.
var protectedPrefixes = []string{RouteDashboard, RouteHome, "/api/"}

// authPaths are reachable only while unauthenticated; authenticated users
// are bounced to the landing page.
var authPaths = map[string]bool{
	RouteLogin: true,
}

// IsProtectedPath reports whether a path requires an authenticated session.
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAuthPath reports whether a path belongs to the unauthenticated-only set.
func IsAuthPath(path string) bool {
	return authPaths[path]
}
