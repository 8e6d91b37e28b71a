package models

import "time"

// User is the identity attached to a session, as reported by the identity
// provider. It is distinct from UserProfile, which lives in the profile
// table.
type User struct {
	ID    string
	Email string
}

// Session is the opaque token bundle proving authentication. It is owned by
// the session provider; other components hold read-only references.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reports whether the access token has passed its expiry, with a
// small margin so a token about to lapse is treated as already stale.
func (s *Session) Expired(margin time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(s.ExpiresAt)
}
