package session

// User is the normalised profile returned by the identity provider's
// userinfo endpoint.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

// State is the full authentication state observed by guards and UI code.
//
// Invariant: IsAuthenticated is true iff both User and AccessToken are
// present. Every named store operation preserves this, with the exception
// of SetLoading which only touches the loading flag.
type State struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsLoading       bool   `json:"isLoading"`
	User            *User  `json:"user,omitempty"`
	AccessToken     string `json:"-"`
	Error           string `json:"error,omitempty"`
}
