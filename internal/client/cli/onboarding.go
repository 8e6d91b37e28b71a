package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/onboarding"
)

var interestOptions = []string{"Frontend", "Backend", "Datos", "Product Management", "Diseño", "AI"}

// Onboarding walks the wizard from the persisted step onward. Each answer is
// written through to local storage, so quitting mid-wizard resumes at the
// same step. The final step sends the merged profile write, applies the
// chosen theme, and clears the draft.
func (a *App) Onboarding(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Inicia sesión primero.")
		return nil
	}

	for {
		state := a.onboarding.State()
		fmt.Printf("\n[Paso %d de %d]\n", state.Step+1, onboarding.TotalSteps)

		done, err := a.runStep(ctx, state)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		if done {
			return nil
		}
	}
}

// runStep executes one wizard step and reports whether the wizard finished.
func (a *App) runStep(ctx context.Context, state onboarding.State) (bool, error) {
	switch state.Step {
	case 0:
		fmt.Println("Bienvenido a Inclick. Vamos a personalizar tu trayecto.")
		name, err := getSimpleText(a.reader, fmt.Sprintf("¿Cómo te llamamos? [%s]", state.Data.Name), os.Stdout)
		if err != nil {
			return false, err
		}
		if name != "" {
			if err := a.onboarding.SetData(ctx, onboarding.Patch{Name: &name}); err != nil {
				return false, err
			}
		}
		return false, a.onboarding.Next(ctx)

	case 1:
		fmt.Printf("Opciones: %s\n", strings.Join(interestOptions, ", "))
		interests, err := GetList(a.reader, "¿Qué temas te interesan?", os.Stdout)
		if err != nil {
			return false, err
		}
		if err := a.onboarding.SetData(ctx, onboarding.Patch{Interests: &interests}); err != nil {
			return false, err
		}
		return false, a.onboarding.Next(ctx)

	case 2:
		choice, err := GetChoice(a.reader, "¿Cuál es tu nivel?",
			[]string{string(models.LevelBeginner), string(models.LevelIntermediate), string(models.LevelAdvanced)},
			string(state.Data.Level), os.Stdout)
		if err != nil {
			return false, err
		}
		level := models.Level(choice)
		if err := a.onboarding.SetData(ctx, onboarding.Patch{Level: &level}); err != nil {
			return false, err
		}
		return false, a.onboarding.Next(ctx)

	case 3:
		choice, err := GetChoice(a.reader, "Tema de la app",
			[]string{string(models.ThemeSystem), string(models.ThemeLight), string(models.ThemeDark)},
			string(state.Data.Theme), os.Stdout)
		if err != nil {
			return false, err
		}
		theme := models.ThemePreference(choice)

		minutes, err := GetInt(a.reader, "Meta semanal en minutos", state.Data.WeeklyGoalMinutes, os.Stdout)
		if err != nil {
			return false, err
		}

		if err := a.onboarding.SetData(ctx, onboarding.Patch{Theme: &theme, WeeklyGoalMinutes: &minutes}); err != nil {
			return false, err
		}
		return false, a.onboarding.Next(ctx)

	case onboarding.TotalSteps - 1:
		data := a.onboarding.State().Data
		fmt.Println("Resumen:")
		fmt.Printf("  Nombre:       %s\n", data.Name)
		fmt.Printf("  Intereses:    %s\n", strings.Join(data.Interests, ", "))
		fmt.Printf("  Nivel:        %s\n", data.Level)
		fmt.Printf("  Tema:         %s\n", data.Theme)
		fmt.Printf("  Meta semanal: %d min\n", data.WeeklyGoalMinutes)

		confirm, err := GetChoice(a.reader, "¿Guardamos?", []string{"si", "no"}, "si", os.Stdout)
		if err != nil {
			return false, err
		}
		if confirm != "si" {
			if err := a.onboarding.Back(ctx); err != nil {
				return false, err
			}
			return false, nil
		}
		return true, a.finishOnboarding(ctx)
	}

	return true, nil
}

func (a *App) finishOnboarding(ctx context.Context) error {
	patch := a.onboarding.ProfilePatch()

	// An account whose profile row is missing (never created, or its fetch
	// failed at session resolution) is authenticated with a nil profile; the
	// write then targets the session user directly.
	state := a.authStore.State()
	if state.Profile == nil && state.Session != nil {
		patch.ID = state.Session.User.ID
	}

	if _, err := a.authStore.UpdateProfile(ctx, patch); err != nil {
		return fmt.Errorf("no pudimos guardar tu progreso: %w", err)
	}
	if patch.Theme != nil {
		if err := a.prefs.SetTheme(ctx, *patch.Theme); err != nil {
			return err
		}
	}
	// The profile row owns completion; the draft is only resume state and is
	// dropped once the write lands.
	if err := a.onboarding.Reset(ctx); err != nil {
		return err
	}

	fmt.Println("¡Listo! Trazo tu trayecto personalizado.")
	return nil
}
