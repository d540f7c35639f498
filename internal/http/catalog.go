package http

import (
	"net/http"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

func (h *Handler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"items": h.catalog.Checklist(r.Context())})
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"types": h.catalog.Types(r.Context())})
}

// ReplaceChecklist substitui o checklist inteiro.
func (h *Handler) ReplaceChecklist(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Items []fleet.ChecklistItem `json:"items"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	items, err := h.catalog.ReplaceChecklist(r.Context(), payload.Items)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível salvar checklist")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ReplaceTypes substitui a lista de tipos de extintor.
func (h *Handler) ReplaceTypes(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Types []fleet.ExtinguisherType `json:"types"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	types, err := h.catalog.ReplaceTypes(r.Context(), payload.Types)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível salvar tipos")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"types": types})
}
