package service

import (
	"errors"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// RequireRole garante que o papel informado esteja entre os permitidos.
func RequireRole(role fleet.Role, allowed ...fleet.Role) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return ErrForbidden
}

// CanManage informa se o papel pode alterar frota, catálogo, usuários e sistema.
func CanManage(role fleet.Role) bool {
	return role == fleet.RoleAdmin
}
