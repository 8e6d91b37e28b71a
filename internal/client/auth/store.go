// Package auth owns the process-wide authentication state machine. It
// orchestrates the session provider and the profile repository, derives the
// onboarding status, and notifies observers on every transition.
package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/profile"
	"github.com/inclick-mx/inclick-cli/internal/client/session"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

// Status is the authentication state of the process.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"

	// StatusAwaitingConfirmation is reached when sign-up succeeds but the
	// provider issued no session (email confirmation pending). It lets
	// callers distinguish "check your inbox" from a silently failed
	// registration.
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
)

// State is the full authentication snapshot. Transitions replace the whole
// value, so an observer always sees either the pre- or post-transition
// snapshot, never a partial one. Session and Profile are read-only
// references.
type State struct {
	Status             Status
	Session            *models.Session
	Profile            *models.UserProfile
	OnboardingComplete bool
}

// phase is the explicit initialization lifecycle guarding against two
// near-simultaneous Initialize calls registering duplicate subscriptions.
type phase int

const (
	phaseNotStarted phase = iota
	phaseStarting
	phaseStarted
)

// Store is the auth state machine with constructor-injected collaborators.
type Store struct {
	provider session.Provider
	profiles profile.Repository
	log      logging.Logger

	mu          sync.Mutex
	state       State
	phase       phase
	unsubscribe func()

	// seq is the monotonic request-sequence counter: every explicit
	// operation and every subscription event takes a token at start and
	// only the highest-numbered one may commit, giving deterministic
	// last-writer-wins semantics between racing updates.
	seq uint64

	observers map[string]func(State)
}

// New constructs a Store in the idle state.
func New(provider session.Provider, profiles profile.Repository, log logging.Logger) *Store {
	return &Store{
		provider:  provider,
		profiles:  profiles,
		log:       log,
		state:     State{Status: StatusIdle},
		observers: make(map[string]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with every new snapshot. The returned
// func removes the registration.
func (s *Store) Subscribe(fn func(State)) func() {
	id := uuid.NewString()
	s.mu.Lock()
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close drops the provider subscription. The store keeps its last state.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.phase = phaseNotStarted
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Initialize resolves any persisted session into state and registers the
// session-change subscription. It is idempotent: once a subscription is
// active (or being set up), further calls are no-ops.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != phaseNotStarted {
		s.mu.Unlock()
		return nil
	}
	s.phase = phaseStarting
	s.mu.Unlock()

	token := s.beginLoading()

	sess, err := s.provider.CurrentSession(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to retrieve current session", "error", err)
		sess = nil
	}
	s.commit(token, s.resolveSession(ctx, sess))

	unsubscribe := s.provider.OnSessionChange(func(next *models.Session) {
		// Covers background token refresh and external sign-out for the
		// lifetime of the process.
		tok := s.nextToken()
		s.commit(tok, s.resolveSession(context.Background(), next))
	})

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.phase = phaseStarted
	s.mu.Unlock()
	return nil
}

// SignIn exchanges credentials for a session and resolves the profile. On
// any failure the store settles into unauthenticated and the normalized
// error is returned.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	token := s.beginLoading()

	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.commit(token, signedOutState())
		return normalizeAuthError(err)
	}
	if sess == nil || sess.User.ID == "" {
		s.commit(token, signedOutState())
		return &session.AuthError{Message: msgNoSession}
	}

	prof, err := s.profiles.FetchProfile(ctx, sess.User.ID)
	if err != nil {
		s.commit(token, signedOutState())
		return normalizeAuthError(err)
	}

	s.commit(token, authenticatedState(sess, prof))
	return nil
}

// SignUpParams carries the registration input.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
}

// SignUp registers a new account. When the provider issues a session the
// store becomes authenticated; when it requires email confirmation (no
// session returned) the store settles into awaiting_confirmation without an
// error.
func (s *Store) SignUp(ctx context.Context, params SignUpParams) error {
	token := s.beginLoading()

	sess, err := s.provider.SignUpWithPassword(ctx, params.Email, params.Password, session.Metadata{Name: params.Name})
	if err != nil {
		s.commit(token, signedOutState())
		return normalizeAuthError(err)
	}
	if sess == nil || sess.User.ID == "" {
		s.commit(token, State{Status: StatusAwaitingConfirmation})
		return nil
	}

	prof, err := s.profiles.FetchProfile(ctx, sess.User.ID)
	if err != nil {
		s.commit(token, signedOutState())
		return normalizeAuthError(err)
	}

	s.commit(token, authenticatedState(sess, prof))
	return nil
}

// SignOut revokes the session with the provider and clears local state
// unconditionally. A provider failure is still returned so callers can
// surface it, but from the state machine's perspective the logout happened:
// best-effort local logout.
func (s *Store) SignOut(ctx context.Context) error {
	token := s.nextToken()

	err := s.provider.SignOut(ctx)
	s.commit(token, signedOutState())
	if err != nil {
		s.log.Warn(ctx, "provider sign-out failed, local session cleared anyway", "error", err)
	}
	return err
}

// RefreshProfile re-fetches the profile for the active session without
// touching the status. No-op when no session is active.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	sess := s.state.Session
	s.mu.Unlock()

	if sess == nil || sess.User.ID == "" {
		return nil
	}

	prof, err := s.profiles.FetchProfile(ctx, sess.User.ID)
	if err != nil {
		return err
	}
	s.replaceProfile(prof)
	return nil
}

// UpdateProfile merges patch over the current profile (current profile wins
// for fields absent from patch), sends the merged write to the repository,
// and replaces the in-memory profile with the returned row; the server is
// authoritative for the final stored shape. Requires either a loaded profile
// or an explicit patch.ID.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error) {
	s.mu.Lock()
	current := s.state.Profile
	s.mu.Unlock()

	if current == nil && patch.ID == "" {
		return nil, common.ErrProfileIDRequired
	}

	merged := patch
	if current != nil {
		merged = models.PatchFromProfile(current).Merge(patch)
	}

	next, err := s.profiles.UpdateProfile(ctx, merged)
	if err != nil {
		return nil, err
	}
	s.replaceProfile(next)
	return next, nil
}

// resolveSession turns a session into the corresponding steady state,
// fetching the profile when a user is attached. A failed fetch keeps the
// session authenticated with a nil profile: the session itself is still
// valid, and OnboardingComplete stays false so the user re-enters the
// wizard path rather than losing the session.
func (s *Store) resolveSession(ctx context.Context, sess *models.Session) State {
	if sess == nil || sess.User.ID == "" {
		return signedOutState()
	}

	prof, err := s.profiles.FetchProfile(ctx, sess.User.ID)
	if err != nil {
		s.log.Warn(ctx, "profile fetch failed during session resolution", "user_id", sess.User.ID, "error", err)
		prof = nil
	}
	return authenticatedState(sess, prof)
}

func signedOutState() State {
	return State{Status: StatusUnauthenticated}
}

func authenticatedState(sess *models.Session, prof *models.UserProfile) State {
	return State{
		Status:             StatusAuthenticated,
		Session:            sess,
		Profile:            prof,
		OnboardingComplete: prof != nil && prof.OnboardingComplete,
	}
}

// nextToken issues a request-sequence token without changing state.
func (s *Store) nextToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// beginLoading issues a token and moves the store into loading, keeping the
// previous session/profile visible until the operation settles.
func (s *Store) beginLoading() uint64 {
	s.mu.Lock()
	s.seq++
	token := s.seq
	st := s.state
	st.Status = StatusLoading
	s.state = st
	fns := s.observerList()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
	return token
}

// commit applies next only when token is still the latest issued one; a
// stale result (an operation overtaken by a newer one) is dropped.
func (s *Store) commit(token uint64, next State) {
	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		s.log.Debug(context.Background(), "dropping stale auth transition", "token", token)
		return
	}
	s.state = next
	fns := s.observerList()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// replaceProfile swaps the profile and derived onboarding flag without
// touching the status. Only an authenticated snapshot accepts the swap: a
// profile write resolving after a concurrent sign-out must not re-attach a
// profile to the signed-out state.
func (s *Store) replaceProfile(prof *models.UserProfile) {
	s.mu.Lock()
	if s.state.Status != StatusAuthenticated {
		s.mu.Unlock()
		return
	}
	st := s.state
	st.Profile = prof
	st.OnboardingComplete = prof != nil && prof.OnboardingComplete
	s.state = st
	fns := s.observerList()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// observerList must be called with mu held.
func (s *Store) observerList() []func(State) {
	fns := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	return fns
}
