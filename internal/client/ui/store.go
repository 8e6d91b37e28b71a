// Package ui holds device-local presentation preferences: color theme,
// notification toggle, and language. Preferences persist as a versioned
// snapshot so the stored shape can be migrated when it changes.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/storage"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

const (
	storageKey = "ui/preferences"

	// snapshotVersion is bumped whenever the persisted shape changes;
	// migrate upgrades older snapshots.
	snapshotVersion = 1

	defaultLanguage = "es-MX"
)

// ColorScheme is the OS-reported appearance.
type ColorScheme string

const (
	SchemeLight ColorScheme = "light"
	SchemeDark  ColorScheme = "dark"
)

// SchemeFunc reports the current OS color scheme.
type SchemeFunc func() ColorScheme

// State is the preference snapshot.
type State struct {
	Version              int                    `json:"version"`
	Theme                models.ThemePreference `json:"theme"`
	NotificationsEnabled bool                   `json:"notificationsEnabled"`
	Language             string                 `json:"language"`
}

func defaultState() State {
	return State{
		Version:              snapshotVersion,
		Theme:                models.ThemeSystem,
		NotificationsEnabled: true,
		Language:             defaultLanguage,
	}
}

// migrate upgrades a persisted snapshot to the current version. Version 1 is
// the first shape, so today this only normalizes missing fields.
func migrate(st State) State {
	if st.Theme == "" || !st.Theme.Valid() {
		st.Theme = models.ThemeSystem
	}
	if st.Language == "" {
		st.Language = defaultLanguage
	}
	st.Version = snapshotVersion
	return st
}

// Store is the persisted UI preference store.
type Store struct {
	kv     storage.Store
	log    logging.Logger
	scheme SchemeFunc

	mu    sync.Mutex
	state State
}

// New builds a Store, rehydrating persisted preferences. scheme supplies the
// OS appearance for ResolveTheme; nil defaults to always-light.
func New(ctx context.Context, kv storage.Store, scheme SchemeFunc, log logging.Logger) *Store {
	if scheme == nil {
		scheme = func() ColorScheme { return SchemeLight }
	}
	s := &Store{kv: kv, log: log, scheme: scheme, state: defaultState()}

	raw, err := kv.Get(ctx, storageKey)
	if err != nil {
		log.Warn(ctx, "failed to load ui preferences", "error", err)
		return s
	}
	if raw == nil {
		return s
	}

	var persisted State
	if err := json.Unmarshal(raw, &persisted); err != nil {
		log.Warn(ctx, "discarding corrupt ui preferences", "error", err)
		return s
	}
	s.state = migrate(persisted)
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetTheme stores the theme preference.
func (s *Store) SetTheme(ctx context.Context, theme models.ThemePreference) error {
	if !theme.Valid() {
		return fmt.Errorf("theme %q: %w", theme, common.ErrInvalidTheme)
	}

	s.mu.Lock()
	s.state.Theme = theme
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// ToggleNotifications flips the notification preference and returns the new
// value.
func (s *Store) ToggleNotifications(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.state.NotificationsEnabled = !s.state.NotificationsEnabled
	st := s.state
	s.mu.Unlock()

	return st.NotificationsEnabled, s.persist(ctx, st)
}

// SetLanguage stores the BCP 47 language tag.
func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		lang = defaultLanguage
	}

	s.mu.Lock()
	s.state.Language = lang
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// ResolveTheme turns the stored preference into a concrete scheme: explicit
// light/dark win, system defers to the OS scheme.
func (s *Store) ResolveTheme() ColorScheme {
	s.mu.Lock()
	theme := s.state.Theme
	s.mu.Unlock()

	switch theme {
	case models.ThemeLight:
		return SchemeLight
	case models.ThemeDark:
		return SchemeDark
	}
	// An unknown or empty OS report resolves to light.
	if s.scheme() == SchemeDark {
		return SchemeDark
	}
	return SchemeLight
}

func (s *Store) persist(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal ui preferences: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, raw); err != nil {
		return fmt.Errorf("persist ui preferences: %w", err)
	}
	return nil
}
