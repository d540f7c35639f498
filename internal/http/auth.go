package http

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/gestaozabele/fireguard/internal/http/middleware"
	"github.com/gestaozabele/fireguard/internal/service"
)

// Login autentica por usuário e senha e devolve o token de acesso.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "usuário e senha são obrigatórios", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		writeServiceError(w, r, err, "erro ao autenticar")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt,
		"user":         result.User,
	})
}

// Me devolve o usuário do token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := httpmiddleware.CurrentUser(r.Context())
	if user.ID == "" {
		WriteError(w, http.StatusUnauthorized, CodeAuth, "subject inválido", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"can_manage": service.CanManage(user.Role),
	})
}
