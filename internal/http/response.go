package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/fireguard/internal/analysis"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/service"
	"github.com/gestaozabele/fireguard/internal/settings"
	"github.com/gestaozabele/fireguard/internal/util"
)

// Códigos do campo error.code.
const (
	CodeValidation  = "VALIDATION"
	CodeAuth        = "AUTH"
	CodeForbidden   = "FORBIDDEN"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeUnavailable = "UNAVAILABLE"
	CodeInternal    = "INTERNAL"
)

// Mensagens exibidas ao usuário quando o erro interno não serve de texto.
const (
	msgInvalidCredentials = "Credenciais inválidas. Verifique seu usuário e senha."
	msgNotFound           = "registro não encontrado"
	msgRemoteUnreachable  = "banco remoto inacessível; a conexão atual foi mantida"
	msgAnalysisDisabled   = "análise de foto indisponível; preencha o checklist manualmente"
)

// Envelope é o formato único de resposta da API.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// WriteError escreve envelope de erro.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, status, Envelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// classify traduz erros de serviço em status e corpo. ok=false significa erro interno.
func classify(err error) (int, ErrorBody, bool) {
	var vErr *util.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: vErr.Message, Details: map[string]string{"field": vErr.Field}}, true
	case errors.Is(err, settings.ErrInvalidDSN):
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: err.Error()}, true
	case errors.Is(err, settings.ErrUnreachable):
		return http.StatusBadGateway, ErrorBody{Code: CodeUnavailable, Message: msgRemoteUnreachable}, true
	case errors.Is(err, fleet.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: msgNotFound}, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorBody{Code: CodeAuth, Message: msgInvalidCredentials}, true
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, service.ErrLastAdmin),
		errors.Is(err, service.ErrConnectionLocked):
		return http.StatusForbidden, ErrorBody{Code: CodeForbidden, Message: err.Error()}, true
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, persist.ErrNoRemote):
		return http.StatusConflict, ErrorBody{Code: CodeConflict, Message: err.Error()}, true
	case errors.Is(err, analysis.ErrDisabled):
		return http.StatusServiceUnavailable, ErrorBody{Code: CodeUnavailable, Message: msgAnalysisDisabled}, true
	}
	return http.StatusInternalServerError, ErrorBody{Code: CodeInternal}, false
}

// writeServiceError escreve o erro do serviço; fallback é a mensagem dos erros internos.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, body, ok := classify(err)
	if !ok {
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		body.Message = fallback
	}
	WriteError(w, status, body.Code, body.Message, body.Details)
}

// decodeJSON lê o corpo limitado a maxBody bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return false
	}
	return true
}

// maxBody comporta fotos inline em base64.
const maxBody = 12 << 20
