package config

// GuardConfig carries the navigation targets used by the route guards.
type GuardConfig interface {
	GetLoginRedirect() string
	GetDashboardRedirect() string
}

type Guards struct {
	LoginRedirect     string `env:"GUARD_LOGIN_REDIRECT" envDefault:"/login"`
	DashboardRedirect string `env:"GUARD_DASHBOARD_REDIRECT" envDefault:"/dashboard"`
}

var _ GuardConfig = Guards{}

// GetLoginRedirect is where protected guards send unauthenticated visitors
func (g Guards) GetLoginRedirect() string {
	return g.LoginRedirect
}

// GetDashboardRedirect is where guest guards send authenticated visitors
func (g Guards) GetDashboardRedirect() string {
	return g.DashboardRedirect
}
