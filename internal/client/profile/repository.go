// Package profile translates between the hosted profile table's record shape
// and the internal profile model, and performs fetch/update by id.
package profile

import (
	"context"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
)

// Repository is the profile store contract consumed by the auth store.
//
// FetchProfile returns (nil, nil) when no row exists for id; that is not an
// error. UpdateProfile writes only the fields present in patch (a nil field
// never unsets a stored value) and returns the full resulting row. Transport
// or authorization failures are logged and returned wrapped; there is no
// retry and no fallback to a stale cached profile.
type Repository interface {
	FetchProfile(ctx context.Context, id string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error)
}
