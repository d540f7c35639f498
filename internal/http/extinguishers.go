package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/fireguard/internal/service"
)

// ListExtinguishers lista a frota com o status exibido; ?q= filtra por código ou local.
func (h *Handler) ListExtinguishers(w http.ResponseWriter, r *http.Request) {
	items := h.fleet.List(r.Context(), r.URL.Query().Get("q"))
	WriteJSON(w, http.StatusOK, map[string]any{"extinguishers": items})
}

func (h *Handler) GetExtinguisher(w http.ResponseWriter, r *http.Request) {
	ext, err := h.fleet.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "não foi possível carregar extintor")
		return
	}
	WriteJSON(w, http.StatusOK, ext)
}

func (h *Handler) CreateExtinguisher(w http.ResponseWriter, r *http.Request) {
	var payload service.ExtinguisherInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	ext, err := h.fleet.Create(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível cadastrar extintor")
		return
	}
	WriteJSON(w, http.StatusCreated, ext)
}

func (h *Handler) UpdateExtinguisher(w http.ResponseWriter, r *http.Request) {
	var payload service.ExtinguisherInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	ext, err := h.fleet.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível atualizar extintor")
		return
	}
	WriteJSON(w, http.StatusOK, ext)
}

// Dashboard devolve os indicadores do painel; ?recent= limita as últimas inspeções (padrão 5).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	recent := 5
	if v := strings.TrimSpace(r.URL.Query().Get("recent")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, CodeValidation, "recent inválido", nil)
			return
		}
		recent = n
	}

	WriteJSON(w, http.StatusOK, h.fleet.Dashboard(r.Context(), recent))
}

// ListAlerts devolve os alertas de validade emitidos pelo monitor.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"enabled": false, "alerts": []any{}})
		return
	}

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	WriteJSON(w, http.StatusOK, map[string]any{"enabled": true, "alerts": h.monitor.Alerts(limit)})
}
