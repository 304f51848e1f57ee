// Package google bridges the Google identity provider and the session store.
// Every externally triggered failure terminates in the store's error field;
// nothing propagates to the guard layer.
package google

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-guard/google/flowstate"
	"github.com/jrsteele09/go-session-guard/session"
	cache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIssuer is the Google OIDC issuer used for endpoint discovery.
	DefaultIssuer = "https://accounts.google.com"

	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultRevokeURL   = "https://oauth2.googleapis.com/revoke"

	// Login attempts older than this are rejected at the callback.
	loginStateTimeout = 15 * time.Minute

	profileCacheTTL = 5 * time.Minute
)

// Config carries the provider settings for the flow controller.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Issuer is discovered via OIDC when Endpoint is nil. Defaults to the
	// Google issuer.
	Issuer string

	// Endpoint, when set, skips discovery entirely (tests, offline use).
	Endpoint *oauth2.Endpoint

	Scopes      []string
	UserInfoURL string
	RevokeURL   string
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}
	if c.UserInfoURL == "" {
		c.UserInfoURL = defaultUserInfoURL
	}
	if c.RevokeURL == "" {
		c.RevokeURL = defaultRevokeURL
	}
	return c
}

// Controller orchestrates provider loading, token-client initialization and
// the login/logout triggers, writing every outcome into the session store.
type Controller struct {
	config Config
	store  *session.Store
	states flowstate.Repo
	client *http.Client
	logger zerolog.Logger

	// Provider endpoint discovery shares one in-flight load across callers.
	loadGroup singleflight.Group

	mu       sync.Mutex
	endpoint *oauth2.Endpoint
	oauthCfg *oauth2.Config // token-client handle, set by Initialize

	// Incremented per login attempt; callbacks for older attempts no longer
	// mutate shared state.
	generation atomic.Uint64

	profiles *cache.Cache
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithHTTPClient sets the HTTP client used for token, userinfo and
// revocation requests (primarily for testing)
func WithHTTPClient(client *http.Client) ControllerOption {
	return func(c *Controller) {
		c.client = client
	}
}

// WithLogger sets the controller logger
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController initializes a flow controller for the given store.
func NewController(store *session.Store, states flowstate.Repo, config Config, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[google.NewController] session store is required")
	}
	if states == nil {
		return nil, errors.New("[google.NewController] flow state repo is required")
	}

	c := &Controller{
		config:   config.withDefaults(),
		store:    store,
		states:   states,
		client:   http.DefaultClient,
		logger:   zerolog.Nop(),
		profiles: cache.New(profileCacheTTL, 2*profileCacheTTL),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// loadProvider resolves the provider's OAuth2 endpoint. The first call
// performs OIDC discovery; concurrent callers share the same in-flight
// lookup and later calls resolve immediately from the cached result. A
// configured endpoint override counts as already loaded.
func (c *Controller) loadProvider(ctx context.Context) (oauth2.Endpoint, error) {
	c.mu.Lock()
	if c.endpoint != nil {
		endpoint := *c.endpoint
		c.mu.Unlock()
		return endpoint, nil
	}
	c.mu.Unlock()

	if c.config.Endpoint != nil {
		c.mu.Lock()
		c.endpoint = c.config.Endpoint
		endpoint := *c.endpoint
		c.mu.Unlock()
		return endpoint, nil
	}

	result, err, _ := c.loadGroup.Do("provider", func() (any, error) {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, c.client), c.config.Issuer)
		if err != nil {
			return nil, errors.Wrap(ErrProviderLoad, err.Error())
		}
		return provider.Endpoint(), nil
	})
	if err != nil {
		return oauth2.Endpoint{}, err
	}

	endpoint := result.(oauth2.Endpoint)
	c.mu.Lock()
	c.endpoint = &endpoint
	c.mu.Unlock()
	return endpoint, nil
}

// Initialize loads the provider configuration and builds the token-client
// handle used by Login. Safe to call more than once; the last configuration
// wins.
func (c *Controller) Initialize(ctx context.Context) error {
	if c.config.RedirectURL == "" {
		return ErrEnvironment
	}

	endpoint, err := c.loadProvider(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.config.ClientID) == "" {
		return ErrMissingClientID
	}

	oauthCfg := &oauth2.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		RedirectURL:  c.config.RedirectURL,
		Scopes:       c.config.Scopes,
		Endpoint:     endpoint,
	}

	c.mu.Lock()
	c.oauthCfg = oauthCfg
	c.mu.Unlock()
	return nil
}

// Login begins a login attempt: it flips the store into the loading state,
// clears any prior error and returns the consent-prompt authorization URL
// to redirect the user to. Completion arrives asynchronously through
// HandleCallback. Calling Login before Initialize records the failure in
// the store and returns ErrNotInitialized.
func (c *Controller) Login(returnURL string) (string, error) {
	c.mu.Lock()
	oauthCfg := c.oauthCfg
	c.mu.Unlock()

	if oauthCfg == nil {
		c.store.SetError(ErrNotInitialized.Error())
		return "", ErrNotInitialized
	}

	c.store.ClearError()
	c.store.SetLoading(true)

	generation := c.generation.Add(1)
	state := uuid.NewString()
	if err := c.states.Upsert(state, &flowstate.LoginState{
		Generation: generation,
		ReturnURL:  returnURL,
		CreatedAt:  time.Now(),
	}); err != nil {
		c.store.SetError("Failed to start login")
		return "", errors.Wrap(err, "[Controller.Login] failed to persist flow state")
	}

	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.AccessTypeOnline,
	)
	return authURL, nil
}

// HandleCallback completes a login attempt with the parameters the provider
// sent back. It returns the configured return URL when the attempt produced
// an authenticated session; every failure is recorded in the store and
// reported with an empty return URL.
func (c *Controller) HandleCallback(ctx context.Context, state, code, errParam string) (returnURL string) {
	flow, flowErr := c.states.Get(state)
	if flowErr == nil {
		// One-shot: the state is consumed whatever the outcome
		if err := c.states.Delete(state); err != nil {
			c.logger.Warn().Err(err).Msg("failed to delete login flow state")
		}
	}

	if flow != nil && flow.Generation != c.generation.Load() {
		c.logger.Debug().Msg("dropping callback for superseded login attempt")
		return ""
	}

	if errParam != "" {
		c.store.SetError(errParam)
		return ""
	}

	if flowErr != nil || flow == nil {
		c.store.SetError("Invalid login state")
		return ""
	}
	if time.Since(flow.CreatedAt) > loginStateTimeout {
		c.store.SetError("Login attempt expired")
		return ""
	}
	if code == "" {
		c.store.SetError("Missing authorization code")
		return ""
	}

	c.mu.Lock()
	oauthCfg := c.oauthCfg
	c.mu.Unlock()
	if oauthCfg == nil {
		c.store.SetError(ErrNotInitialized.Error())
		return ""
	}

	token, err := oauthCfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, c.client), code)
	if err != nil {
		c.logger.Error().Err(err).Msg("token exchange failed")
		c.store.SetError("Failed to exchange authorization code")
		return ""
	}

	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" {
		c.logIDTokenClaims(rawIDToken)
	}

	user, err := c.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		c.logger.Error().Err(err).Msg("userinfo fetch failed")
		c.store.SetError("Failed to fetch user information")
		return ""
	}

	if err := c.store.SetUser(user, token.AccessToken); err != nil {
		c.logger.Error().Err(err).Msg("failed to persist session")
		c.store.SetError("Failed to persist session")
		return ""
	}

	return flow.ReturnURL
}

// Revoke best-effort revokes an access token with the provider. Intended as
// the store's logout revocation hook; failures are logged and dropped.
func (c *Controller) Revoke(accessToken string) {
	resp, err := c.client.PostForm(c.config.RevokeURL, url.Values{"token": {accessToken}})
	if err != nil {
		c.logger.Debug().Err(err).Msg("token revocation failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().Int("status", resp.StatusCode).Msg("token revocation rejected")
	}
}

// Logout delegates entirely to the session store
func (c *Controller) Logout() {
	c.store.Logout()
}
