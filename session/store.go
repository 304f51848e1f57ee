package session

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-session-guard/session/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// storedRecord is the persisted representation of an authenticated session.
// A record missing either field is treated as corrupt and discarded.
type storedRecord struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// Observer receives the full session state on every change.
type Observer func(State)

// Revoker is invoked on logout with the access token that was active, if
// any. Revocation is best-effort; failures are not surfaced to the store.
type Revoker func(accessToken string)

// Store is the sole owner of the session State. All reads go through State()
// or a subscription, all writes go through the named operations. A Store is
// safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[int]Observer
	nextSub int

	repo    storage.Repo
	revoker Revoker
	logger  zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger used for swallowed storage failures
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRevoker sets the best-effort token revocation hook used by Logout
func WithRevoker(revoker Revoker) StoreOption {
	return func(s *Store) {
		s.revoker = revoker
	}
}

// New initializes a Store backed by the given storage slot. The store starts
// in the loading state; call Init to settle it from persisted storage.
func New(repo storage.Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[session.New] storage repo is required")
	}

	s := &Store{
		state:  State{IsLoading: true},
		subs:   make(map[int]Observer),
		repo:   repo,
		logger: zerolog.Nop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Init settles the store from persisted storage. It may be called any number
// of times; each call re-reads the slot. A well-formed record produces an
// authenticated state. An absent or malformed record is discarded (the slot
// is cleared) and the store settles unauthenticated, even if a prior Init or
// SetUser had authenticated it. Init never fails: parse errors are logged
// and treated as "no session".
func (s *Store) Init() {
	raw, err := s.repo.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNoRecord) {
			s.logger.Warn().Err(err).Msg("session storage read failed, treating as no session")
			if clearErr := s.repo.Clear(); clearErr != nil {
				s.logger.Warn().Err(clearErr).Msg("failed to clear session storage")
			}
		}
		s.update(settleUnauthenticated)
		return
	}

	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.User == nil || rec.AccessToken == "" {
		s.logger.Warn().Err(err).Msg("discarding corrupt session record")
		if clearErr := s.repo.Clear(); clearErr != nil {
			s.logger.Warn().Err(clearErr).Msg("failed to clear session storage")
		}
		s.update(settleUnauthenticated)
		return
	}

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.IsLoading = false
		st.User = rec.User
		st.AccessToken = rec.AccessToken
	})
}

// SetUser persists the session record and moves the store into the
// authenticated state, clearing any prior error. The state is not mutated
// if the durable write fails.
func (s *Store) SetUser(user *User, accessToken string) error {
	if user == nil {
		return errors.New("[Store.SetUser] user is required")
	}
	if accessToken == "" {
		return errors.New("[Store.SetUser] accessToken is required")
	}

	raw, err := json.Marshal(storedRecord{User: user, AccessToken: accessToken})
	if err != nil {
		return errors.Wrap(err, "[Store.SetUser] failed to encode session record")
	}
	if err := s.repo.Save(raw); err != nil {
		return errors.Wrap(err, "[Store.SetUser] failed to persist session record")
	}

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.IsLoading = false
		st.User = user
		st.AccessToken = accessToken
		st.Error = ""
	})
	return nil
}

// SetLoading sets the loading flag only
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) {
		st.IsLoading = loading
	})
}

// SetError records a failure message and clears the loading flag
func (s *Store) SetError(message string) {
	s.update(func(st *State) {
		st.IsLoading = false
		st.Error = message
	})
}

// ClearError clears any recorded failure message
func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Error = ""
	})
}

// Logout clears the persisted record and resets the store to the
// unauthenticated defaults. If an access token was present and a revoker is
// configured, the token is revoked in the background; revocation failure
// does not block or alter the local state reset.
func (s *Store) Logout() {
	token := s.State().AccessToken

	if err := s.repo.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear session storage on logout")
	}

	if token != "" && s.revoker != nil {
		go s.revoker(token)
	}

	s.update(func(st *State) {
		*st = State{}
	})
}

// State returns a snapshot of the current session state for non-reactive
// call sites.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers an observer that receives the full state on every
// change. The returned function removes the subscription.
func (s *Store) Subscribe(observer Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// settleUnauthenticated is the Init fallback for absent or discarded
// records: any previously authenticated state is dropped along with the
// loading flag. The error message is left alone so a failure surfaced
// before Init stays visible to the caller.
func settleUnauthenticated(st *State) {
	st.IsAuthenticated = false
	st.IsLoading = false
	st.User = nil
	st.AccessToken = ""
}

// update applies a mutation and notifies observers with the resulting
// snapshot. Observers always see a fully-formed state, never a partially
// updated one.
func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	observers := make([]Observer, 0, len(s.subs))
	for _, obs := range s.subs {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snapshot)
	}
}
