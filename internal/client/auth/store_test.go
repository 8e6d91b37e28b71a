package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/session"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

type fakeProvider struct {
	session      *models.Session
	currentErr   error
	signInErr    error
	signUpSess   *models.Session
	signUpErr    error
	signOutErr   error
	signOutCalls int
	changeFn     session.ChangeFunc
	subscribed   int
}

func (f *fakeProvider) CurrentSession(ctx context.Context) (*models.Session, error) {
	return f.session, f.currentErr
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session, nil
}

func (f *fakeProvider) SignUpWithPassword(ctx context.Context, email, password string, meta session.Metadata) (*models.Session, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpSess, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) OnSessionChange(fn session.ChangeFunc) func() {
	f.subscribed++
	f.changeFn = fn
	return func() { f.changeFn = nil }
}

type fakeRepository struct {
	profile   *models.UserProfile
	fetchErr  error
	fetchID   string
	updateErr error
	lastPatch *models.ProfilePatch
}

func (f *fakeRepository) FetchProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	f.fetchID = id
	return f.profile, f.fetchErr
}

// UpdateProfile echoes the supplied patch back as the stored row, the way a
// representation-returning server would.
func (f *fakeRepository) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error) {
	f.lastPatch = &patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	out := &models.UserProfile{ID: patch.ID}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		out.AvatarURL = *patch.AvatarURL
	}
	if patch.Interests != nil {
		out.Interests = *patch.Interests
	}
	if patch.PreferredLevel != nil {
		out.PreferredLevel = *patch.PreferredLevel
	}
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	if patch.OnboardingComplete != nil {
		out.OnboardingComplete = *patch.OnboardingComplete
	}
	if patch.WeeklyGoalMinutes != nil {
		out.WeeklyGoalMinutes = *patch.WeeklyGoalMinutes
	}
	return out, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSession(userID string) *models.Session {
	return &models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.User{ID: userID, Email: "ana@example.com"},
	}
}

func testProfile(id string) *models.UserProfile {
	return &models.UserProfile{
		ID:                 id,
		Name:               "Ana",
		Email:              "ana@example.com",
		Interests:          []string{"Frontend"},
		PreferredLevel:     models.LevelBeginner,
		Theme:              models.ThemeSystem,
		OnboardingComplete: true,
		WeeklyGoalMinutes:  120,
	}
}

func TestInitialize_NoSession(t *testing.T) {
	provider := &fakeProvider{}
	store := New(provider, &fakeRepository{}, testLogger())

	require.NoError(t, store.Initialize(context.Background()))

	st := store.State()
	assert.Equal(t, StatusUnauthenticated, st.Status)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Profile)
	assert.False(t, st.OnboardingComplete)
}

func TestInitialize_WithPersistedSession(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.Initialize(context.Background()))

	st := store.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	require.NotNil(t, st.Session)
	assert.Equal(t, "u1", st.Session.User.ID)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Ana", st.Profile.Name)
	assert.True(t, st.OnboardingComplete)
	assert.Equal(t, "u1", repo.fetchID)
}

func TestInitialize_Idempotent(t *testing.T) {
	provider := &fakeProvider{}
	store := New(provider, &fakeRepository{}, testLogger())

	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Initialize(context.Background()))

	assert.Equal(t, 1, provider.subscribed)
}

func TestInitialize_ProfileFetchFailureKeepsSession(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{fetchErr: errors.New("timeout")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.Initialize(context.Background()))

	st := store.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.NotNil(t, st.Session)
	assert.Nil(t, st.Profile)
	assert.False(t, st.OnboardingComplete)
}

func TestSignIn_Success(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	var statuses []Status
	unsubscribe := store.Subscribe(func(st State) {
		statuses = append(statuses, st.Status)
	})
	defer unsubscribe()

	require.NoError(t, store.SignIn(context.Background(), "ana@example.com", "secret"))

	st := store.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.True(t, st.OnboardingComplete)
	assert.Equal(t, []Status{StatusLoading, StatusAuthenticated}, statuses)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	provider := &fakeProvider{
		signInErr: &session.AuthError{StatusCode: 400, Message: "Invalid login credentials"},
	}
	store := New(provider, &fakeRepository{}, testLogger())

	err := store.SignIn(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())
	assert.Equal(t, StatusUnauthenticated, store.State().Status)
}

func TestSignIn_SessionWithoutUser(t *testing.T) {
	provider := &fakeProvider{session: &models.Session{AccessToken: "access"}}
	store := New(provider, &fakeRepository{}, testLogger())

	err := store.SignIn(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, msgNoSession, err.Error())
	assert.Equal(t, StatusUnauthenticated, store.State().Status)
}

func TestSignIn_ProfileFetchFailure(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{fetchErr: errors.New("connection refused")}
	store := New(provider, repo, testLogger())

	err := store.SignIn(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, StatusUnauthenticated, store.State().Status)
}

func TestSignUp_AwaitingConfirmation(t *testing.T) {
	provider := &fakeProvider{signUpSess: nil}
	store := New(provider, &fakeRepository{}, testLogger())

	err := store.SignUp(context.Background(), SignUpParams{
		Email:    "ana@example.com",
		Password: "secret",
		Name:     "Ana",
	})
	require.NoError(t, err)

	st := store.State()
	assert.Equal(t, StatusAwaitingConfirmation, st.Status)
	assert.Nil(t, st.Session)
}

func TestSignUp_AutoConfirmed(t *testing.T) {
	provider := &fakeProvider{signUpSess: testSession("u2")}
	repo := &fakeRepository{profile: &models.UserProfile{ID: "u2", Name: "Ana"}}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.SignUp(context.Background(), SignUpParams{
		Email:    "ana@example.com",
		Password: "secret",
		Name:     "Ana",
	}))

	st := store.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.False(t, st.OnboardingComplete)
}

func TestSignOut_ClearsStateDespiteProviderError(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1"), signOutErr: errors.New("revocation failed")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.SignIn(context.Background(), "ana@example.com", "secret"))
	require.Equal(t, StatusAuthenticated, store.State().Status)

	err := store.SignOut(context.Background())
	require.Error(t, err)

	st := store.State()
	assert.Equal(t, StatusUnauthenticated, st.Status)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Profile)
	assert.Equal(t, 1, provider.signOutCalls)
}

func TestUpdateProfile_MergesOverCurrent(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	current := testProfile("u1")
	current.OnboardingComplete = false
	repo := &fakeRepository{profile: current}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.SignIn(context.Background(), "ana@example.com", "secret"))

	done := true
	minutes := 180
	updated, err := store.UpdateProfile(context.Background(), models.ProfilePatch{
		OnboardingComplete: &done,
		WeeklyGoalMinutes:  &minutes,
	})
	require.NoError(t, err)

	// The write carries the full merged row: fields absent from the patch
	// keep their current values instead of being dropped.
	require.NotNil(t, repo.lastPatch)
	assert.Equal(t, "u1", repo.lastPatch.ID)
	require.NotNil(t, repo.lastPatch.Interests)
	assert.Equal(t, []string{"Frontend"}, *repo.lastPatch.Interests)
	require.NotNil(t, repo.lastPatch.OnboardingComplete)
	assert.True(t, *repo.lastPatch.OnboardingComplete)

	assert.Equal(t, []string{"Frontend"}, updated.Interests)
	assert.Equal(t, 180, updated.WeeklyGoalMinutes)

	st := store.State()
	assert.Equal(t, updated, st.Profile)
	assert.True(t, st.OnboardingComplete)
}

func TestUpdateProfile_RequiresIDWithoutLoadedProfile(t *testing.T) {
	store := New(&fakeProvider{}, &fakeRepository{}, testLogger())

	_, err := store.UpdateProfile(context.Background(), models.ProfilePatch{})
	assert.ErrorIs(t, err, common.ErrProfileIDRequired)
}

func TestRefreshProfile_NoopWithoutSession(t *testing.T) {
	repo := &fakeRepository{}
	store := New(&fakeProvider{}, repo, testLogger())

	require.NoError(t, store.RefreshProfile(context.Background()))
	assert.Empty(t, repo.fetchID)
}

func TestRefreshProfile_ReplacesProfile(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.SignIn(context.Background(), "ana@example.com", "secret"))

	refreshed := testProfile("u1")
	refreshed.WeeklyGoalMinutes = 300
	repo.profile = refreshed

	require.NoError(t, store.RefreshProfile(context.Background()))
	assert.Equal(t, 300, store.State().Profile.WeeklyGoalMinutes)
}

func TestUpdateProfile_AfterSignOutDoesNotReattachProfile(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.SignIn(context.Background(), "ana@example.com", "secret"))
	require.NoError(t, store.SignOut(context.Background()))

	done := true
	updated, err := store.UpdateProfile(context.Background(), models.ProfilePatch{
		ID:                 "u1",
		OnboardingComplete: &done,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// The write went through, but the signed-out snapshot stays clean.
	st := store.State()
	assert.Equal(t, StatusUnauthenticated, st.Status)
	assert.Nil(t, st.Profile)
	assert.False(t, st.OnboardingComplete)
}

func TestSessionChange_SignsOutExternally(t *testing.T) {
	provider := &fakeProvider{session: testSession("u1")}
	repo := &fakeRepository{profile: testProfile("u1")}
	store := New(provider, repo, testLogger())

	require.NoError(t, store.Initialize(context.Background()))
	require.Equal(t, StatusAuthenticated, store.State().Status)
	require.NotNil(t, provider.changeFn)

	provider.changeFn(nil)

	st := store.State()
	assert.Equal(t, StatusUnauthenticated, st.Status)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Profile)
}

func TestStaleCommitDropped(t *testing.T) {
	store := New(&fakeProvider{}, &fakeRepository{}, testLogger())

	first := store.nextToken()
	second := store.nextToken()

	store.commit(first, State{Status: StatusAuthenticated})
	assert.Equal(t, StatusIdle, store.State().Status)

	store.commit(second, signedOutState())
	assert.Equal(t, StatusUnauthenticated, store.State().Status)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	store := New(&fakeProvider{}, &fakeRepository{}, testLogger())

	calls := 0
	unsubscribe := store.Subscribe(func(State) { calls++ })

	store.commit(store.nextToken(), signedOutState())
	assert.Equal(t, 1, calls)

	unsubscribe()
	store.commit(store.nextToken(), signedOutState())
	assert.Equal(t, 1, calls)
}

func TestNormalizeAuthError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want string
	}{
		{"invalid credentials", &session.AuthError{Message: "Invalid login credentials"}, MsgInvalidCredentials},
		{"email not confirmed", &session.AuthError{Message: "Email not confirmed"}, MsgEmailNotConfirmed},
		{"empty message", &session.AuthError{StatusCode: 500}, MsgUnexpected},
		{"unknown message passes through", &session.AuthError{Message: "User already registered"}, "User already registered"},
		{"non-auth error passes through", errors.New("dial tcp: timeout"), "dial tcp: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAuthError(tt.in)
			require.Error(t, got)
			assert.Equal(t, tt.want, got.Error())
		})
	}
}
