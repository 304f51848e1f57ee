package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// GoogleLoginHandler begins a Google login (GET /auth/google). The consent
// flow completes at the callback route; failures surface through the session
// store and are rendered by the login page.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("return")
		// Only same-site return targets
		if !strings.HasPrefix(returnURL, "/") || strings.HasPrefix(returnURL, "//") {
			returnURL = s.config.GetDashboardRedirect()
		}

		authURL, err := s.controller.Login(returnURL)
		if err != nil {
			log.Err(err).Msg("failed to start Google login")
			http.Redirect(w, r, s.config.GetLoginRedirect(), http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// OAuthCallbackHandler completes a login attempt (GET or POST /auth/callback)
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errParam := r.FormValue("error")

		returnURL := s.controller.HandleCallback(r.Context(), state, code, errParam)
		if returnURL == "" {
			// The failure reason is in the store; the login page displays it
			http.Redirect(w, r, s.config.GetLoginRedirect(), http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.controller.Logout()
		http.Redirect(w, r, s.config.GetLoginRedirect(), http.StatusSeeOther)
	}
}
