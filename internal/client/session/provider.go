// Package session wraps the hosted identity provider: password sign-in and
// sign-up, sign-out, current-session retrieval with transparent refresh, and
// a subscription mechanism notifying on session changes (token refresh,
// external sign-out).
package session

import (
	"context"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
)

// Metadata carries optional attributes attached to the account at sign-up.
type Metadata struct {
	Name string
}

// ChangeFunc receives the new session on every change event. A nil session
// means signed out.
type ChangeFunc func(session *models.Session)

// Provider is the session provider contract consumed by the auth store.
//
// CurrentSession returns (nil, nil) when no session exists. SignUpWithPassword
// returns (nil, nil) when the provider requires email confirmation and issues
// no session. All provider rejections are *AuthError values carrying the
// provider's message.
type Provider interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUpWithPassword(ctx context.Context, email, password string, meta Metadata) (*models.Session, error)
	SignOut(ctx context.Context) error
	OnSessionChange(fn ChangeFunc) (unsubscribe func())
}

// AuthError is a provider rejection. Message is the provider-specific text;
// the auth store normalizes known messages into user-facing ones.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}
