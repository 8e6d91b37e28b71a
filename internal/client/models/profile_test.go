package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelValid(t *testing.T) {
	assert.True(t, LevelBeginner.Valid())
	assert.True(t, LevelIntermediate.Valid())
	assert.True(t, LevelAdvanced.Valid())
	assert.False(t, Level("expert").Valid())
	assert.False(t, Level("").Valid())
}

func TestThemePreferenceValid(t *testing.T) {
	assert.True(t, ThemeSystem.Valid())
	assert.True(t, ThemeLight.Valid())
	assert.True(t, ThemeDark.Valid())
	assert.False(t, ThemePreference("sepia").Valid())
}

func TestProfilePatch_Merge_PatchWins(t *testing.T) {
	base := PatchFromProfile(&UserProfile{
		ID:                 "u1",
		Name:               "Ana",
		Interests:          []string{"Frontend"},
		PreferredLevel:     LevelBeginner,
		Theme:              ThemeSystem,
		OnboardingComplete: false,
		WeeklyGoalMinutes:  120,
	})

	done := true
	merged := base.Merge(ProfilePatch{ID: "u1", OnboardingComplete: &done})

	require.NotNil(t, merged.OnboardingComplete)
	assert.True(t, *merged.OnboardingComplete)

	// Fields absent from the patch keep the base values.
	require.NotNil(t, merged.Interests)
	assert.Equal(t, []string{"Frontend"}, *merged.Interests)
	require.NotNil(t, merged.Name)
	assert.Equal(t, "Ana", *merged.Name)
	assert.Equal(t, "u1", merged.ID)
}

func TestSessionExpired(t *testing.T) {
	live := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, live.Expired(30*time.Second))

	stale := &Session{ExpiresAt: time.Now().Add(10 * time.Second)}
	assert.True(t, stale.Expired(30*time.Second))

	noExpiry := &Session{}
	assert.False(t, noExpiry.Expired(30*time.Second))
}
