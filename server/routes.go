package server

func (s *Server) initRoutes() {
	// Root guard: no content of its own, just a settled-state redirect
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.RootRedirectHandler("", ""), s.HTMLMiddleware()...))

	// Guarded pages
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware(s.GuestOnly(""))...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.RequireSession(""))...))

	// LOGIN / LOGOUT
	s.RegisterRouteHandler("GET "+RouteAuthGoogle, ChainMiddleware(s.GoogleLoginHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...)) // For form_post response mode
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
}
