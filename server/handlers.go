package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-session-guard/session"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
	<h1>Sign in</h1>
	{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
	<a href="/auth/google">Sign in with Google</a>
</body>
</html>`))

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard</title></head>
<body>
	<h1>Welcome, {{.User.Name}}</h1>
	<p>{{.User.Email}}</p>
	{{if .User.Picture}}<img src="{{.User.Picture}}" alt="avatar" width="48" height="48">{{end}}
	<a href="/auth/logout">Sign out</a>
</body>
</html>`))

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Error string
}

// DashboardPageData contains data for rendering the dashboard page
type DashboardPageData struct {
	User *session.User
}

// LoginPageHandler displays the sign-in page (GET /login). Guarded by
// GuestOnly; an authenticated visitor never reaches it.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{Error: s.store.State().Error}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTemplate.Execute(w, data); err != nil {
			log.Err(err).Msg("failed to render login page")
		}
	}
}

// DashboardHandler displays the signed-in user's profile (GET /dashboard).
// Guarded by RequireSession.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.store.State()
		data := DashboardPageData{User: state.User}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := dashboardTemplate.Execute(w, data); err != nil {
			log.Err(err).Msg("failed to render dashboard page")
		}
	}
}

// SessionHandler serves the derived read-only views of the session state
// (GET /api/session). The JSON projection never includes the access token.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Init()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(s.store.State()); err != nil {
			log.Err(err).Msg("failed to encode session state")
		}
	}
}
