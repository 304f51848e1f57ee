package google

import "errors"

var (
	// ErrEnvironment is returned when no redirect URL is configured, so
	// there is no hosting context for the provider to return to.
	ErrEnvironment = errors.New("no redirect context configured")

	// ErrProviderLoad is returned when discovery of the provider
	// configuration fails.
	ErrProviderLoad = errors.New("failed to load provider configuration")

	// ErrMissingClientID is returned by Initialize when the client
	// identifier is empty.
	ErrMissingClientID = errors.New("missing client id")

	// ErrNotInitialized is returned by Login before a successful Initialize.
	ErrNotInitialized = errors.New("Google OAuth not initialized")

	// ErrProfileFetch is returned when the userinfo endpoint does not
	// produce a usable profile.
	ErrProfileFetch = errors.New("failed to fetch user information")
)
