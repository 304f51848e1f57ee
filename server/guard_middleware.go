package server

import "net/http"

// The guards below are the navigation policy around the session store. Each
// one re-reads persisted storage (store.Init) before deciding, so the first
// request after a restart reflects the stored session rather than the
// in-memory defaults. Redirects are whole-document redirects.

// RequireSession is the protected-route guard: unauthenticated visitors are
// redirected to redirectTo (the configured login redirect when empty) and
// the wrapped handler is never invoked for them.
func (s *Server) RequireSession(redirectTo string) func(http.HandlerFunc) http.HandlerFunc {
	if redirectTo == "" {
		redirectTo = s.config.GetLoginRedirect()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.store.Init()

			if !s.store.State().IsAuthenticated {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}

			next(w, r)
		}
	}
}

// GuestOnly is the mirror image: authenticated visitors are redirected to
// redirectTo (the configured dashboard redirect when empty).
func (s *Server) GuestOnly(redirectTo string) func(http.HandlerFunc) http.HandlerFunc {
	if redirectTo == "" {
		redirectTo = s.config.GetDashboardRedirect()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.store.Init()

			if s.store.State().IsAuthenticated {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}

			next(w, r)
		}
	}
}

// RootRedirectHandler renders nothing itself; it sends the visitor to one of
// two targets depending on the settled session state.
func (s *Server) RootRedirectHandler(authTarget, guestTarget string) http.HandlerFunc {
	if authTarget == "" {
		authTarget = s.config.GetDashboardRedirect()
	}
	if guestTarget == "" {
		guestTarget = s.config.GetLoginRedirect()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Init()

		target := guestTarget
		if s.store.State().IsAuthenticated {
			target = authTarget
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
