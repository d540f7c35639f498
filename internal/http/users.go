package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/gestaozabele/fireguard/internal/http/middleware"
	"github.com/gestaozabele/fireguard/internal/service"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"users": h.users.List(r.Context())})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateUserInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.users.Create(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível criar usuário")
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// DeleteUser remove o usuário; o próprio administrador não pode se remover.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetSubject(r.Context())
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeServiceError(w, r, err, "não foi possível remover usuário")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
