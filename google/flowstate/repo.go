package flowstate

import "time"

// LoginState links an outbound login redirect to the provider callback that
// completes it.
type LoginState struct {
	Generation uint64 // Login attempt counter; stale callbacks are dropped
	ReturnURL  string // Where to land after a successful login
	CreatedAt  time.Time
}

type Repo interface {
	Upsert(state string, loginState *LoginState) error
	Get(state string) (*LoginState, error)
	Delete(state string) error
}
