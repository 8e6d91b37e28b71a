package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
)

// accessClaims is the subset of access-token claims the client reads.
// The token is decoded without signature verification: the client does not
// hold the provider's signing secret, and the token was just received over
// TLS from the provider itself.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// sessionFromTokens rebuilds a Session from a token pair, recovering the
// user identity and expiry from the access-token claims.
func sessionFromTokens(accessToken, refreshToken string) (*models.Session, error) {
	claims := &accessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	s := &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: models.User{
			ID:    claims.Subject,
			Email: claims.Email,
		},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// fillFromClaims backfills missing session fields (user, expiry) from the
// access token. Used when the provider response omits them.
func fillFromClaims(s *models.Session) {
	decoded, err := sessionFromTokens(s.AccessToken, s.RefreshToken)
	if err != nil {
		return
	}
	if s.User.ID == "" {
		s.User = decoded.User
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = decoded.ExpiresAt
	}
}
