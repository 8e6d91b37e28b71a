package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/inclick-mx/inclick-cli/internal/client/auth"
	"github.com/inclick-mx/inclick-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email and password and creates an account.
// When the backend requires email confirmation the user is told to check
// their inbox instead of being logged in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Nombre", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Correo", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authStore.SignUp(ctx, auth.SignUpParams{
		Email:    email,
		Password: string(password),
		Name:     name,
	})
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	// A fresh account starts the wizard from scratch.
	if err := a.onboarding.Reset(ctx); err != nil {
		a.log.Warn(ctx, "failed to reset onboarding draft", "error", err)
	}

	if a.authStore.State().Status == auth.StatusAwaitingConfirmation {
		fmt.Println("Revisa tu correo para confirmar la cuenta antes de iniciar sesión.")
		return nil
	}

	fmt.Println("¡Cuenta creada!")
	a.afterSignIn(ctx)
	return nil
}

// Login prompts for credentials and signs in. On success the user is routed
// to the onboarding wizard when their profile has not completed it yet.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Correo", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authStore.SignIn(ctx, email, string(password)); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("¡Hola de nuevo!")
	a.afterSignIn(ctx)
	return nil
}

// Logout signs out. Local state is cleared even when the backend call fails.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authStore.SignOut(ctx); err != nil {
		fmt.Println("La sesión local se cerró, pero el servidor no confirmó la salida.")
		return err
	}
	fmt.Println("Sesión cerrada.")
	return nil
}

// afterSignIn routes the user the way the app's root navigator does: a
// profile that has not finished onboarding goes to the wizard, everyone else
// lands on home.
func (a *App) afterSignIn(ctx context.Context) {
	state := a.authStore.State()
	if state.Status != auth.StatusAuthenticated {
		return
	}
	if !state.OnboardingComplete {
		fmt.Println("Tu perfil aún no está completo. Escribe 'onboarding' para configurarlo.")
		return
	}
	fmt.Println("Escribe 'courses' para explorar el catálogo.")
}
