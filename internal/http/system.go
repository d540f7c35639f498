package http

import (
	"net/http"

	"github.com/gestaozabele/fireguard/internal/service"
)

func (h *Handler) GetSystemConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.system.Config(r.Context()))
}

// UpdateSystemConfig grava nome e logotipo.
func (h *Handler) UpdateSystemConfig(w http.ResponseWriter, r *http.Request) {
	var payload service.SystemConfigInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	cfg, err := h.system.SaveConfig(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível salvar configuração")
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// ResetSystemConfig volta para a identidade padrão.
func (h *Handler) ResetSystemConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.system.ResetConfig(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "não foi possível restaurar configuração")
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// GetConnection devolve a conexão remota sem credenciais.
func (h *Handler) GetConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.system.Connection(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "não foi possível carregar conexão")
		return
	}
	WriteJSON(w, http.StatusOK, conn)
}

type connectionPayload struct {
	DSN string `json:"dsn"`
}

// UpdateConnection troca o banco remoto sem reiniciar o processo.
func (h *Handler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	var payload connectionPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	conn, err := h.system.UpdateConnection(r.Context(), payload.DSN)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível conectar ao banco remoto")
		return
	}
	WriteJSON(w, http.StatusOK, conn)
}

// ClearConnection remove o DSN local; a aplicação segue só com o espelho.
func (h *Handler) ClearConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.system.ClearConnection(r.Context()); err != nil {
		writeServiceError(w, r, err, "não foi possível remover conexão")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestConnection verifica o DSN sem trocar a conexão ativa.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var payload connectionPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	if err := h.system.TestConnection(r.Context(), payload.DSN); err != nil {
		writeServiceError(w, r, err, "banco remoto inacessível")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// PendingSync lista as gravações remotas que falharam.
func (h *Handler) PendingSync(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"pending": h.system.PendingSync(r.Context())})
}

// Resync reenvia as divergências ao remoto.
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	report, err := h.system.Resync(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "não foi possível sincronizar")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
