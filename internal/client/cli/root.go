package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/auth"
)

func (a *App) getStatus() string {
	state := a.authStore.State()
	switch state.Status {
	case auth.StatusAuthenticated:
		name := ""
		if state.Profile != nil && state.Profile.Name != "" {
			name = state.Profile.Name
		} else if state.Session != nil {
			name = state.Session.User.Email
		}
		if !state.OnboardingComplete {
			return fmt.Sprintf("(%s, onboarding pendiente)", name)
		}
		return fmt.Sprintf("(%s)", name)
	case auth.StatusAwaitingConfirmation:
		return "(confirma tu correo)"
	default:
		return ""
	}
}

// Root runs the interactive shell until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Inclick CLI (escribe 'help' para ver los comandos)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("inclick %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Comandos: profile, onboarding, courses [q] [categoría], course <id>, path, theme [system|light|dark], notifications, language [tag], avatar <archivo>, setapikey, logout, exit")
			} else {
				fmt.Println("Comandos: register, login, courses, theme, language, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "profile":
			_ = a.Profile(ctx)
		case "onboarding":
			_ = a.Onboarding(ctx)
		case "courses":
			_ = a.Courses(ctx, args)
		case "course":
			if len(args) == 0 {
				fmt.Println("Uso: course <id>")
				continue
			}
			_ = a.Course(ctx, args[0])
		case "path":
			_ = a.Path(ctx)
		case "theme":
			value := ""
			if len(args) > 0 {
				value = args[0]
			}
			_ = a.Theme(ctx, value)
		case "notifications":
			_ = a.Notifications(ctx)
		case "language":
			value := ""
			if len(args) > 0 {
				value = args[0]
			}
			_ = a.Language(ctx, value)
		case "avatar":
			if len(args) == 0 {
				fmt.Println("Uso: avatar <archivo>")
				continue
			}
			_ = a.Avatar(ctx, args[0])
		case "setapikey":
			_ = a.SetAPIKey(ctx)
		case "exit", "quit":
			fmt.Println("¡Hasta pronto!")
			return
		default:
			fmt.Println("Comando desconocido:", cmd)
		}
	}
}
