package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/storage"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

const (
	// sessionStorageKey is the secure-store key holding the persisted
	// token bundle.
	sessionStorageKey = "auth/session"

	// defaultRefreshMargin treats a token expiring within this window as
	// already stale.
	defaultRefreshMargin = 30 * time.Second
)

// HTTPClient is a GoTrue-compatible session provider talking to the hosted
// auth endpoint. Sessions are persisted through the secure store so they
// survive process restarts.
type HTTPClient struct {
	baseURL       string
	anonKey       string
	http          *http.Client
	store         storage.Store
	log           logging.Logger
	refreshMargin time.Duration

	mu          sync.Mutex
	session     *models.Session
	hydrated    bool
	subscribers map[string]ChangeFunc
}

// Option configures the HTTPClient during construction.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithRefreshMargin overrides how early a token counts as stale.
func WithRefreshMargin(d time.Duration) Option {
	return func(c *HTTPClient) { c.refreshMargin = d }
}

// NewHTTPClient constructs a session provider for the given endpoint and
// anon key. Store persists the session bundle; it should be a SecureStore.
func NewHTTPClient(baseURL, anonKey string, store storage.Store, log logging.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:       baseURL,
		anonKey:       anonKey,
		http:          &http.Client{Timeout: 15 * time.Second},
		store:         store,
		log:           log,
		refreshMargin: defaultRefreshMargin,
		subscribers:   make(map[string]ChangeFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// persistedSession is the JSON snapshot written to the secure store.
type persistedSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	UserEmail    string    `json:"user_email"`
}

// tokenResponse mirrors the provider's token/signup payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// errorResponse covers the provider's error body variants.
type errorResponse struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error"`
}

func (e *errorResponse) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	default:
		return e.ErrorCode
	}
}

// CurrentSession returns the active session, rehydrating it from the secure
// store on first call and refreshing it transparently when stale. Returns
// (nil, nil) when no session exists.
func (c *HTTPClient) CurrentSession(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	if !c.hydrated {
		c.hydrateLocked(ctx)
	}
	s := c.session
	c.mu.Unlock()

	if s == nil {
		return nil, nil
	}
	if s.Expired(c.refreshMargin) {
		return c.refresh(ctx)
	}
	return s, nil
}

// hydrateLocked loads the persisted session bundle. Decryption or decoding
// failures drop the stored value: the user simply signs in again.
func (c *HTTPClient) hydrateLocked(ctx context.Context) {
	c.hydrated = true
	raw, err := c.store.Get(ctx, sessionStorageKey)
	if err != nil || raw == nil {
		if err != nil {
			c.log.Warn(ctx, "failed to load persisted session", "error", err)
		}
		return
	}

	var p persistedSession
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn(ctx, "discarding corrupt persisted session", "error", err)
		_ = c.store.Delete(ctx, sessionStorageKey)
		return
	}

	s := &models.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
		User:         models.User{ID: p.UserID, Email: p.UserEmail},
	}
	fillFromClaims(s)
	c.session = s
}

// SignInWithPassword exchanges credentials for a session.
func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", body, "", &resp); err != nil {
		return nil, err
	}

	s := c.sessionFromResponse(&resp)
	if s == nil {
		return nil, &AuthError{Message: "no session returned"}
	}
	c.setSession(ctx, s)
	return s, nil
}

// SignUpWithPassword registers a new account. When the provider requires
// email confirmation it issues no session; (nil, nil) is returned in that
// case.
func (c *HTTPClient) SignUpWithPassword(ctx context.Context, email, password string, meta Metadata) (*models.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if meta.Name != "" {
		body["data"] = map[string]string{"full_name": meta.Name}
	}

	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/signup", body, "", &resp); err != nil {
		return nil, err
	}

	s := c.sessionFromResponse(&resp)
	if s == nil {
		return nil, nil
	}
	c.setSession(ctx, s)
	return s, nil
}

// SignOut revokes the session server-side and always clears the local bundle,
// emitting a nil-session change event even if the revocation call failed.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	var err error
	if s != nil {
		err = c.post(ctx, "/auth/v1/logout", struct{}{}, s.AccessToken, nil)
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if derr := c.store.Delete(ctx, sessionStorageKey); derr != nil {
		c.log.Warn(ctx, "failed to delete persisted session", "error", derr)
	}
	c.emit(nil)
	return err
}

// OnSessionChange registers fn to be called on refresh and sign-out events.
// The returned func removes the registration.
func (c *HTTPClient) OnSessionChange(fn ChangeFunc) func() {
	id := uuid.NewString()
	c.mu.Lock()
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// StartAutoRefresh runs a background watcher that refreshes the session
// before it expires, until ctx is cancelled. Refreshes trigger change
// events, which the auth store turns into a session→profile resolution.
func (c *HTTPClient) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				s := c.session
				c.mu.Unlock()
				if s == nil || !s.Expired(c.refreshMargin) {
					continue
				}
				if _, err := c.refresh(ctx); err != nil {
					c.log.Warn(ctx, "session auto-refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// refresh exchanges the refresh token for a new bundle and notifies
// subscribers. A rejected refresh token clears the session (external
// invalidation) and emits a signed-out event.
func (c *HTTPClient) refresh(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return nil, nil
	}

	body := map[string]string{"refresh_token": s.RefreshToken}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", body, "", &resp); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			c.mu.Lock()
			c.session = nil
			c.mu.Unlock()
			_ = c.store.Delete(ctx, sessionStorageKey)
			c.emit(nil)
		}
		return nil, err
	}

	next := c.sessionFromResponse(&resp)
	if next == nil {
		return nil, &AuthError{Message: "no session returned on refresh"}
	}
	c.setSession(ctx, next)
	c.emit(next)
	return next, nil
}

// sessionFromResponse builds a Session from a provider payload, backfilling
// identity and expiry from the JWT claims. Returns nil when no access token
// was issued.
func (c *HTTPClient) sessionFromResponse(resp *tokenResponse) *models.Session {
	if resp.AccessToken == "" {
		return nil
	}
	s := &models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         models.User{ID: resp.User.ID, Email: resp.User.Email},
	}
	if resp.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	fillFromClaims(s)
	return s
}

// setSession stores s in memory and write-through persists it.
func (c *HTTPClient) setSession(ctx context.Context, s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.hydrated = true
	c.mu.Unlock()

	p := persistedSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		UserID:       s.User.ID,
		UserEmail:    s.User.Email,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.log.Error(ctx, "failed to marshal session", "error", err)
		return
	}
	if err := c.store.Set(ctx, sessionStorageKey, raw); err != nil {
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}
}

// emit calls every subscriber outside the lock.
func (c *HTTPClient) emit(s *models.Session) {
	c.mu.Lock()
	fns := make([]ChangeFunc, 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// post sends a JSON request to the auth endpoint. Non-2xx responses are
// returned as *AuthError with the provider's message.
func (c *HTTPClient) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := e.message()
		if msg == "" {
			msg = fmt.Sprintf("auth error %d", resp.StatusCode)
		}
		return &AuthError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response %s: %w", path, err)
		}
	}
	return nil
}
