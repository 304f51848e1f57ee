package flowstate

import (
	"errors"
	"sync"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]*LoginState
}

// NewInMemoryRepo creates a new in-memory login flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*LoginState),
	}
}

// Upsert stores or updates a login flow state
func (r *InMemoryRepo) Upsert(state string, loginState *LoginState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if loginState == nil {
		return errors.New("loginState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to prevent external modifications
	r.states[state] = &LoginState{
		Generation: loginState.Generation,
		ReturnURL:  loginState.ReturnURL,
		CreatedAt:  loginState.CreatedAt,
	}

	return nil
}

// Get retrieves a login flow state by state parameter
func (r *InMemoryRepo) Get(state string) (*LoginState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	loginState, exists := r.states[state]
	if !exists {
		return nil, errors.New("state not found")
	}

	// Return a copy to prevent external modifications
	return &LoginState{
		Generation: loginState.Generation,
		ReturnURL:  loginState.ReturnURL,
		CreatedAt:  loginState.CreatedAt,
	}, nil
}

// Delete removes a login flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}
