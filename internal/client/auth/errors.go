package auth

import (
	"errors"
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/session"
)

// User-facing auth messages. The app ships in Spanish.
const (
	MsgInvalidCredentials = "Correo o contraseña incorrectos."
	MsgEmailNotConfirmed  = "Confirma tu correo antes de iniciar sesión."
	MsgUnexpected         = "Ocurrió un error inesperado. Inténtalo de nuevo."

	msgNoSession = "Credenciales inválidas."
)

// normalizeAuthError maps known provider failures onto user-facing
// messages. Auth errors with an unrecognized but non-empty message pass
// through unchanged; auth errors carrying no message at all get the generic
// fallback. Non-auth errors (network, storage) are returned as-is.
func normalizeAuthError(err error) error {
	var authErr *session.AuthError
	if !errors.As(err, &authErr) {
		return err
	}

	lower := strings.ToLower(authErr.Message)
	switch {
	case strings.Contains(lower, "invalid login credentials"):
		return &session.AuthError{StatusCode: authErr.StatusCode, Message: MsgInvalidCredentials}
	case strings.Contains(lower, "email not confirmed"):
		return &session.AuthError{StatusCode: authErr.StatusCode, Message: MsgEmailNotConfirmed}
	case authErr.Message == "":
		return &session.AuthError{StatusCode: authErr.StatusCode, Message: MsgUnexpected}
	}
	return authErr
}
