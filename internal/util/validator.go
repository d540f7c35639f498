package util

import (
	"strings"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

// ValidationError descreve entrada inválida; vira 400 na borda HTTP.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid cria um erro de validação para o campo.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field, field+" obrigatório")
	}
	return nil
}

// ValidateUsername aceita letras minúsculas, dígitos, ponto, hífen e sublinhado.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return Invalid("username", "usuário deve ter entre 3 e 32 caracteres")
	}
	for _, c := range username {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
		default:
			return Invalid("username", "usuário deve conter apenas letras minúsculas, números, ponto, hífen ou sublinhado")
		}
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return Invalid("password", "senha deve ter pelo menos 6 caracteres")
	}
	return nil
}

// ValidateDate exige AAAA-MM-DD (ou RFC 3339).
func ValidateDate(value, field string) error {
	if err := RequireString(value, field); err != nil {
		return err
	}
	if _, err := fleet.ParseDate(value); err != nil {
		return Invalid(field, field+" inválida")
	}
	return nil
}
