package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
)

// Profile prints the signed-in user's profile, refreshing it first.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Inicia sesión primero.")
		return nil
	}

	if err := a.authStore.RefreshProfile(ctx); err != nil {
		fmt.Println("No pudimos actualizar tu perfil:", err.Error())
	}

	state := a.authStore.State()
	if state.Profile == nil {
		fmt.Println("Tu perfil aún no existe. Escribe 'onboarding' para crearlo.")
		return nil
	}

	p := state.Profile
	fmt.Printf("%s <%s>\n", p.Name, p.Email)
	fmt.Printf("  Nivel:        %s\n", p.PreferredLevel)
	fmt.Printf("  Intereses:    %s\n", strings.Join(p.Interests, ", "))
	fmt.Printf("  Tema:         %s\n", p.Theme)
	fmt.Printf("  Meta semanal: %d min\n", p.WeeklyGoalMinutes)
	if p.AvatarURL != "" {
		fmt.Printf("  Avatar:       %s\n", p.AvatarURL)
	}
	fmt.Printf("  Onboarding:   %v\n", p.OnboardingComplete)
	return nil
}

// Avatar uploads the image at path and stores its URL on the profile.
func (a *App) Avatar(ctx context.Context, path string) error {
	if !a.isLoggedIn() {
		fmt.Println("Inicia sesión primero.")
		return nil
	}
	if a.avatars == nil {
		fmt.Println("La subida de avatares no está configurada.")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Println("No pudimos leer el archivo:", err.Error())
		return err
	}
	defer func() { _ = f.Close() }()

	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := a.avatars.Upload(ctx, f, contentType, ext)
	if err != nil {
		fmt.Println("No pudimos subir el avatar:", err.Error())
		return err
	}

	if _, err := a.authStore.UpdateProfile(ctx, models.ProfilePatch{AvatarURL: &url}); err != nil {
		fmt.Println("El avatar se subió pero no se guardó en tu perfil:", err.Error())
		return err
	}

	fmt.Println("Avatar actualizado:", url)
	return nil
}

// Theme changes the stored theme preference and shows the resolved scheme.
func (a *App) Theme(ctx context.Context, value string) error {
	if value == "" {
		st := a.prefs.State()
		fmt.Printf("Tema: %s (resuelto: %s)\n", st.Theme, a.prefs.ResolveTheme())
		return nil
	}

	theme := models.ThemePreference(value)
	if err := a.prefs.SetTheme(ctx, theme); err != nil {
		fmt.Println("Tema inválido. Usa: system, light o dark.")
		return err
	}
	fmt.Printf("Tema: %s (resuelto: %s)\n", theme, a.prefs.ResolveTheme())
	return nil
}

// Language shows or changes the stored interface language tag.
func (a *App) Language(ctx context.Context, value string) error {
	if value == "" {
		fmt.Printf("Idioma: %s\n", a.prefs.State().Language)
		return nil
	}
	if err := a.prefs.SetLanguage(ctx, value); err != nil {
		return err
	}
	fmt.Printf("Idioma: %s\n", a.prefs.State().Language)
	return nil
}

// Notifications toggles the notification preference.
func (a *App) Notifications(ctx context.Context) error {
	enabled, err := a.prefs.ToggleNotifications(ctx)
	if err != nil {
		return err
	}
	if enabled {
		fmt.Println("Notificaciones activadas.")
	} else {
		fmt.Println("Notificaciones desactivadas.")
	}
	return nil
}
