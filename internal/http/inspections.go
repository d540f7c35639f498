package http

import (
	"net/http"

	httpmiddleware "github.com/gestaozabele/fireguard/internal/http/middleware"
	"github.com/gestaozabele/fireguard/internal/service"
)

// ListInspections lista inspeções; ?extinguisherId= filtra por extintor.
func (h *Handler) ListInspections(w http.ResponseWriter, r *http.Request) {
	items := h.inspections.List(r.Context(), r.URL.Query().Get("extinguisherId"))
	WriteJSON(w, http.StatusOK, map[string]any{"inspections": items})
}

// History devolve as inspeções da mais recente para a mais antiga com o código do extintor.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"history": h.inspections.History(r.Context())})
}

// SubmitInspection registra a inspeção; status, id e data são definidos no servidor.
func (h *Handler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	var payload service.SubmitInspectionInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	ins, err := h.inspections.Submit(r.Context(), payload, httpmiddleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "não foi possível registrar inspeção")
		return
	}
	WriteJSON(w, http.StatusCreated, ins)
}

// AnalyzeInspection pré-preenche o checklist a partir da foto.
func (h *Handler) AnalyzeInspection(w http.ResponseWriter, r *http.Request) {
	var payload service.AnalyzeInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	out, err := h.inspections.Analyze(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "falha na análise da imagem")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}
