package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.pageMiddleware(s.RedirectAuthenticated())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.pageMiddleware(s.LoginRateLimitMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.pageMiddleware()...))

	// SSO login (enabled only when OIDC is configured)
	if s.sso != nil {
		s.RegisterRouteHandler("GET "+RouteSSOLogin, ChainMiddleware(s.SSOLoginHandler(), s.pageMiddleware(s.RedirectAuthenticated())...))
		s.RegisterRouteHandler("GET "+RouteSSOCallback, ChainMiddleware(s.SSOCallbackHandler(), s.pageMiddleware()...))
	}

	// Gated dashboard pages (session cookie, redirect to login when absent)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.pageMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.DashboardHandler(), s.pageMiddleware(s.RequireSession())...))

	// Gated JSON API (session cookie, 401 JSON when absent)
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionInfoHandler(), s.apiMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIUsers, ChainMiddleware(s.UsersListHandler(), s.apiMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIPhotographers, ChainMiddleware(s.PhotographersListHandler(), s.apiMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIBookings, ChainMiddleware(s.BookingsListHandler(), s.apiMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIPhotos, ChainMiddleware(s.PhotosListHandler(), s.apiMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIFinanceSummary, ChainMiddleware(s.FinanceSummaryHandler(), s.apiMiddleware(s.RequireSessionAPI())...))

	// Operational routes
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	if s.metricsHandler != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metricsHandler)
	}
}
