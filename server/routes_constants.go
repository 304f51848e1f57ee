package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot      = "/"
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"

	// Auth Routes - Login & Logout
	RouteAuthGoogle = "/auth/google"
	RouteCallback   = "/auth/callback"
	RouteAuthLogout = "/auth/logout"

	// API Routes
	RouteAPISession = "/api/session"
)
