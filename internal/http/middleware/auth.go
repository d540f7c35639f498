package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gestaozabele/fireguard/internal/auth"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyRole     contextKey = "role"
	ContextKeyName     contextKey = "name"
	ContextKeyUsername contextKey = "username"
)

// Auth valida o JWT de acesso e injeta as claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}
			if claims.Subject == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "subject inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, fleet.NormalizeRole(claims.Role))
			ctx = context.WithValue(ctx, ContextKeyName, claims.Name)
			ctx = context.WithValue(ctx, ContextKeyUsername, claims.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera o id do usuário autenticado.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole recupera o papel do usuário autenticado.
func GetRole(ctx context.Context) fleet.Role {
	val, _ := ctx.Value(ContextKeyRole).(fleet.Role)
	return val
}

// CurrentUser remonta o usuário reduzido a partir das claims.
func CurrentUser(ctx context.Context) fleet.User {
	name, _ := ctx.Value(ContextKeyName).(string)
	username, _ := ctx.Value(ContextKeyUsername).(string)
	return fleet.User{ID: GetSubject(ctx), Name: name, Username: username, Role: GetRole(ctx)}
}

// RequireAdmin restringe a rota a administradores.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRoles(fleet.RoleAdmin)(next)
}

// RequireRoles garante que o usuário tenha um dos papéis informados.
func RequireRoles(allowed ...fleet.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r.Context())
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
