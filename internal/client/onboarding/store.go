// Package onboarding holds the wizard draft: the current step plus the
// answers collected so far. Every mutation is written through to local
// storage so a killed process resumes the wizard exactly where it stopped.
package onboarding

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

// TotalSteps is the number of wizard steps; Step is valid in [0, TotalSteps-1].
const TotalSteps = 5

const storageKey = "onboarding/draft"

// Data is the answers collected by the wizard.
type Data struct {
	Name              string                 `json:"name"`
	Interests         []string               `json:"interests"`
	Level             models.Level           `json:"level"`
	Theme             models.ThemePreference `json:"theme"`
	WeeklyGoalMinutes int                    `json:"weeklyGoalMinutes"`
	AvatarURL         string                 `json:"avatarUrl,omitempty"`
}

// Patch is a partial Data update applied by SetData. Nil fields keep the
// current value.
type Patch struct {
	Name              *string
	Interests         *[]string
	Level             *models.Level
	Theme             *models.ThemePreference
	WeeklyGoalMinutes *int
	AvatarURL         *string
}

// State is the full wizard snapshot.
type State struct {
	Step      int  `json:"step"`
	Completed bool `json:"completed"`
	Data      Data `json:"data"`
}

func defaultState() State {
	return State{
		Step: 0,
		Data: Data{
			Interests:         []string{},
			Level:             models.LevelBeginner,
			Theme:             models.ThemeSystem,
			WeeklyGoalMinutes: 120,
		},
	}
}

// Store is the persisted onboarding wizard state.
type Store struct {
	kv  storage.Store
	log logging.Logger

	mu    sync.Mutex
	state State
}

// New builds a Store, rehydrating any persisted draft. A corrupt or missing
// snapshot falls back to the defaults.
func New(ctx context.Context, kv storage.Store, log logging.Logger) *Store {
	s := &Store{kv: kv, log: log, state: defaultState()}

	raw, err := kv.Get(ctx, storageKey)
	if err != nil {
		log.Warn(ctx, "failed to load onboarding draft", "error", err)
		return s
	}
	if raw == nil {
		return s
	}

	var persisted State
	if err := json.Unmarshal(raw, &persisted); err != nil {
		log.Warn(ctx, "discarding corrupt onboarding draft", "error", err)
		return s
	}
	if persisted.Step < 0 || persisted.Step >= TotalSteps {
		persisted.Step = 0
	}
	if persisted.Data.Interests == nil {
		persisted.Data.Interests = []string{}
	}
	s.state = persisted
	return s
}

// State returns the current snapshot. Data.Interests is a copy.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Data.Interests = append([]string(nil), st.Data.Interests...)
	return st
}

// SetStep moves the wizard to step, rejecting anything outside
// [0, TotalSteps-1] before touching state.
func (s *Store) SetStep(ctx context.Context, step int) error {
	if step < 0 || step >= TotalSteps {
		return fmt.Errorf("step %d: %w", step, common.ErrStepOutOfRange)
	}

	s.mu.Lock()
	s.state.Step = step
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// Next advances one step, clamping at the last one.
func (s *Store) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Step < TotalSteps-1 {
		s.state.Step++
	}
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// Back moves one step back, clamping at the first one.
func (s *Store) Back(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Step > 0 {
		s.state.Step--
	}
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// SetData merges patch into the collected answers. Fields the patch leaves
// nil keep their current values.
func (s *Store) SetData(ctx context.Context, patch Patch) error {
	s.mu.Lock()
	d := s.state.Data
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Interests != nil {
		d.Interests = append([]string(nil), (*patch.Interests)...)
	}
	if patch.Level != nil {
		d.Level = *patch.Level
	}
	if patch.Theme != nil {
		d.Theme = *patch.Theme
	}
	if patch.WeeklyGoalMinutes != nil {
		d.WeeklyGoalMinutes = *patch.WeeklyGoalMinutes
	}
	if patch.AvatarURL != nil {
		d.AvatarURL = *patch.AvatarURL
	}
	s.state.Data = d
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// MarkCompleted flags the wizard as finished. The collected answers stay
// available until Reset.
func (s *Store) MarkCompleted(ctx context.Context) error {
	s.mu.Lock()
	s.state.Completed = true
	st := s.state
	s.mu.Unlock()

	return s.persist(ctx, st)
}

// Reset restores the defaults and drops the persisted draft.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.state = defaultState()
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, storageKey); err != nil {
		return fmt.Errorf("delete onboarding draft: %w", err)
	}
	return nil
}

// ProfilePatch converts the collected answers into the profile write sent
// at the end of the wizard.
func (s *Store) ProfilePatch() models.ProfilePatch {
	s.mu.Lock()
	d := s.state.Data
	interests := append([]string(nil), d.Interests...)
	s.mu.Unlock()

	done := true
	return models.ProfilePatch{
		Name:               &d.Name,
		Interests:          &interests,
		PreferredLevel:     &d.Level,
		Theme:              &d.Theme,
		WeeklyGoalMinutes:  &d.WeeklyGoalMinutes,
		OnboardingComplete: &done,
	}
}

func (s *Store) persist(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal onboarding draft: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, raw); err != nil {
		return fmt.Errorf("persist onboarding draft: %w", err)
	}
	return nil
}
