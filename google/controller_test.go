package google_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-session-guard/google"
	"github.com/jrsteele09/go-session-guard/google/flowstate"
	"github.com/jrsteele09/go-session-guard/session"
	"github.com/jrsteele09/go-session-guard/session/storage/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testRedirectURL  = "http://localhost:3000/auth/callback"
	testAccessToken  = "granted-token"
)

// fakeProvider serves the token and userinfo endpoints of the identity
// provider.
type fakeProvider struct {
	server *httptest.Server

	requests       atomic.Int64
	userInfoStatus int
	revoked        chan string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{
		userInfoStatus: http.StatusOK,
		revoked:        make(chan string, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": testAccessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		if p.userInfoStatus != http.StatusOK {
			http.Error(w, "unavailable", p.userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "1",
			"email":       "a@b.com",
			"name":        "A",
			"picture":     "https://example.com/avatar.png",
			"given_name":  "Ada",
			"family_name": "Lovelace",
		})
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		_ = r.ParseForm()
		p.revoked <- r.FormValue("token")
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) endpoint() *oauth2.Endpoint {
	return &oauth2.Endpoint{
		AuthURL:  p.server.URL + "/auth",
		TokenURL: p.server.URL + "/token",
	}
}

func (p *fakeProvider) config() google.Config {
	return google.Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  testRedirectURL,
		Endpoint:     p.endpoint(),
		UserInfoURL:  p.server.URL + "/userinfo",
		RevokeURL:    p.server.URL + "/revoke",
	}
}

type controllerFixture struct {
	provider   *fakeProvider
	store      *session.Store
	states     flowstate.Repo
	controller *google.Controller
}

func setupController(t *testing.T, mutateConfig ...func(*google.Config)) *controllerFixture {
	t.Helper()

	provider := newFakeProvider(t)
	store, err := session.New(repofake.NewFakeStorageRepo())
	require.NoError(t, err)
	store.Init()

	cfg := provider.config()
	for _, mutate := range mutateConfig {
		mutate(&cfg)
	}

	states := flowstate.NewInMemoryRepo()
	controller, err := google.NewController(store, states, cfg,
		google.WithHTTPClient(provider.server.Client()))
	require.NoError(t, err)

	return &controllerFixture{
		provider:   provider,
		store:      store,
		states:     states,
		controller: controller,
	}
}

// loginState runs Login and extracts the state parameter from the returned
// authorization URL.
func (f *controllerFixture) loginState(t *testing.T) string {
	t.Helper()

	authURL, err := f.controller.Login("/dashboard")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestNewControllerValidation(t *testing.T) {
	provider := newFakeProvider(t)
	store, err := session.New(repofake.NewFakeStorageRepo())
	require.NoError(t, err)

	_, err = google.NewController(nil, flowstate.NewInMemoryRepo(), provider.config())
	require.Error(t, err)

	_, err = google.NewController(store, nil, provider.config())
	require.Error(t, err)
}

func TestInitializeRequiresRedirectURL(t *testing.T) {
	f := setupController(t, func(cfg *google.Config) {
		cfg.RedirectURL = ""
	})

	err := f.controller.Initialize(context.Background())
	require.ErrorIs(t, err, google.ErrEnvironment)
}

func TestInitializeRequiresClientID(t *testing.T) {
	f := setupController(t, func(cfg *google.Config) {
		cfg.ClientID = "  "
	})

	err := f.controller.Initialize(context.Background())
	require.ErrorIs(t, err, google.ErrMissingClientID)
}

func TestInitializeViaDiscovery(t *testing.T) {
	// A provider without a configured endpoint override is discovered
	// through its OIDC configuration document.
	var issuer string
	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"issuer": %q,
			"authorization_endpoint": %q,
			"token_endpoint": %q,
			"jwks_uri": %q
		}`, issuer, issuer+"/auth", issuer+"/token", issuer+"/jwks")
	}))
	defer discovery.Close()
	issuer = discovery.URL

	f := setupController(t, func(cfg *google.Config) {
		cfg.Endpoint = nil
		cfg.Issuer = discovery.URL
	})

	require.NoError(t, f.controller.Initialize(context.Background()))

	authURL, err := f.controller.Login("/dashboard")
	require.NoError(t, err)
	require.Contains(t, authURL, discovery.URL+"/auth")
}

func TestInitializeFailsWhenDiscoveryUnavailable(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	f := setupController(t, func(cfg *google.Config) {
		cfg.Endpoint = nil
		cfg.Issuer = broken.URL
	})

	err := f.controller.Initialize(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, google.ErrProviderLoad)
}

func TestLoginBeforeInitialize(t *testing.T) {
	f := setupController(t)

	_, err := f.controller.Login("/dashboard")
	require.ErrorIs(t, err, google.ErrNotInitialized)

	state := f.store.State()
	require.Equal(t, google.ErrNotInitialized.Error(), state.Error)
	require.False(t, state.IsAuthenticated)

	// No network call may have been attempted
	require.Zero(t, f.provider.requests.Load())
}

func TestLoginBuildsConsentURL(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	f.store.SetError("stale error")

	authURL, err := f.controller.Login("/dashboard")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	query := parsed.Query()
	require.Equal(t, testClientID, query.Get("client_id"))
	require.Equal(t, testRedirectURL, query.Get("redirect_uri"))
	require.Equal(t, "consent", query.Get("prompt"))
	require.NotEmpty(t, query.Get("state"))

	state := f.store.State()
	require.True(t, state.IsLoading)
	require.Empty(t, state.Error)
}

func TestCallbackSuccess(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	state := f.loginState(t)

	returnURL := f.controller.HandleCallback(context.Background(), state, "auth-code", "")
	require.Equal(t, "/dashboard", returnURL)

	sessionState := f.store.State()
	require.True(t, sessionState.IsAuthenticated)
	require.False(t, sessionState.IsLoading)
	require.Equal(t, testAccessToken, sessionState.AccessToken)
	require.Equal(t, "1", sessionState.User.ID)
	require.Equal(t, "a@b.com", sessionState.User.Email)
	require.Equal(t, "A", sessionState.User.Name)
	require.Equal(t, "Ada", sessionState.User.GivenName)
}

func TestCallbackForwardsProviderError(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	state := f.loginState(t)
	before := f.store.State().IsAuthenticated

	returnURL := f.controller.HandleCallback(context.Background(), state, "", "access_denied")
	require.Empty(t, returnURL)

	sessionState := f.store.State()
	require.Equal(t, "access_denied", sessionState.Error)
	require.Equal(t, before, sessionState.IsAuthenticated)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	f.loginState(t)

	returnURL := f.controller.HandleCallback(context.Background(), "forged-state", "auth-code", "")
	require.Empty(t, returnURL)

	sessionState := f.store.State()
	require.Equal(t, "Invalid login state", sessionState.Error)
	require.False(t, sessionState.IsAuthenticated)
}

func TestCallbackStateIsOneShot(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	state := f.loginState(t)

	require.Equal(t, "/dashboard", f.controller.HandleCallback(context.Background(), state, "auth-code", ""))

	// Replaying the same state must fail
	require.Empty(t, f.controller.HandleCallback(context.Background(), state, "auth-code", ""))
	require.Equal(t, "Invalid login state", f.store.State().Error)
}

func TestCallbackDropsSupersededAttempt(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))

	first := f.loginState(t)
	f.loginState(t) // A second attempt supersedes the first

	returnURL := f.controller.HandleCallback(context.Background(), first, "auth-code", "")
	require.Empty(t, returnURL)

	// The stale callback must not have mutated shared state
	sessionState := f.store.State()
	require.False(t, sessionState.IsAuthenticated)
	require.Empty(t, sessionState.Error)
	require.True(t, sessionState.IsLoading)
}

func TestCallbackUserInfoFailure(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	f.provider.userInfoStatus = http.StatusInternalServerError
	state := f.loginState(t)

	returnURL := f.controller.HandleCallback(context.Background(), state, "auth-code", "")
	require.Empty(t, returnURL)

	sessionState := f.store.State()
	require.Equal(t, "Failed to fetch user information", sessionState.Error)
	require.False(t, sessionState.IsAuthenticated)
}

func TestRevoke(t *testing.T) {
	f := setupController(t)

	f.controller.Revoke("revoke-me")

	require.Equal(t, "revoke-me", <-f.provider.revoked)
}

func TestLogoutDelegatesToStore(t *testing.T) {
	f := setupController(t)
	require.NoError(t, f.controller.Initialize(context.Background()))
	state := f.loginState(t)
	require.NotEmpty(t, f.controller.HandleCallback(context.Background(), state, "auth-code", ""))

	f.controller.Logout()

	sessionState := f.store.State()
	require.False(t, sessionState.IsAuthenticated)
	require.Nil(t, sessionState.User)
}
