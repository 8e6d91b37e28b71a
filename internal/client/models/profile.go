// Package models defines the client-side domain types shared by the session
// provider, profile repository, stores, and CLI.
package models

// Level is the user's self-reported experience level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ThemePreference selects the app color theme. ThemeSystem defers to the
// OS-reported scheme at resolution time.
type ThemePreference string

const (
	ThemeSystem ThemePreference = "system"
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
)

// Valid reports whether p is one of the known preferences.
func (p ThemePreference) Valid() bool {
	switch p {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// UserProfile is the mutable user record, distinct from the identity/session
// record. ID is assigned by the identity provider at account creation and
// never changes afterwards.
type UserProfile struct {
	ID                 string
	Name               string
	Email              string
	AvatarURL          string
	Interests          []string
	PreferredLevel     Level
	Theme              ThemePreference
	OnboardingComplete bool
	WeeklyGoalMinutes  int
}

// ProfilePatch is a partial profile update. Nil fields are not written
// server-side, so an absent field never unsets a stored value. ID is
// required.
type ProfilePatch struct {
	ID                 string
	Name               *string
	AvatarURL          *string
	Interests          *[]string
	PreferredLevel     *Level
	Theme              *ThemePreference
	OnboardingComplete *bool
	WeeklyGoalMinutes  *int
}

// PatchFromProfile builds a patch carrying every field of p. The auth store
// uses it to send the client-side merge of current profile and user input.
func PatchFromProfile(p *UserProfile) ProfilePatch {
	interests := append([]string(nil), p.Interests...)
	return ProfilePatch{
		ID:                 p.ID,
		Name:               &p.Name,
		AvatarURL:          &p.AvatarURL,
		Interests:          &interests,
		PreferredLevel:     &p.PreferredLevel,
		Theme:              &p.Theme,
		OnboardingComplete: &p.OnboardingComplete,
		WeeklyGoalMinutes:  &p.WeeklyGoalMinutes,
	}
}

// Merge overlays patch over base and returns the resulting full patch.
// Fields present in patch win; everything else keeps the base value.
func (base ProfilePatch) Merge(patch ProfilePatch) ProfilePatch {
	out := base
	if patch.ID != "" {
		out.ID = patch.ID
	}
	if patch.Name != nil {
		out.Name = patch.Name
	}
	if patch.AvatarURL != nil {
		out.AvatarURL = patch.AvatarURL
	}
	if patch.Interests != nil {
		out.Interests = patch.Interests
	}
	if patch.PreferredLevel != nil {
		out.PreferredLevel = patch.PreferredLevel
	}
	if patch.Theme != nil {
		out.Theme = patch.Theme
	}
	if patch.OnboardingComplete != nil {
		out.OnboardingComplete = patch.OnboardingComplete
	}
	if patch.WeeklyGoalMinutes != nil {
		out.WeeklyGoalMinutes = patch.WeeklyGoalMinutes
	}
	return out
}
