// Package analysis pré-preenche o checklist a partir de uma foto do extintor.
// Falhas aqui nunca impedem o registro de uma inspeção.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

var (
	// ErrDisabled indica que nenhuma chave de análise foi configurada.
	ErrDisabled = errors.New("configuração de IA indisponível")
	// ErrEmptyResponse indica resposta vazia do modelo.
	ErrEmptyResponse = errors.New("resposta da IA vazia")
	// ErrEmptyImage indica requisição sem imagem.
	ErrEmptyImage = errors.New("imagem obrigatória")
)

// Analyzer avalia uma foto (data URL ou base64 puro).
type Analyzer interface {
	Analyze(ctx context.Context, image string) (*Result, error)
}

// Result é a avaliação devolvida pelo modelo. Campos ausentes ficam nil.
type Result struct {
	ManometerOK     *bool    `json:"manometerOk,omitempty"`
	SealOK          *bool    `json:"sealOk,omitempty"`
	HoseOK          *bool    `json:"hoseOk,omitempty"`
	CasingOK        *bool    `json:"casingOk,omitempty"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
	Observation     string   `json:"observation,omitempty"`
}

// ParseResult decodifica o JSON devolvido pelo modelo.
func ParseResult(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decodificar análise: %w", err)
	}
	return &result, nil
}

// Prefill aplica o resultado sobre as respostas atuais e devolve uma cópia.
// Itens sem campo correspondente mantêm o valor anterior.
func Prefill(responses map[string]bool, result *Result) map[string]bool {
	out := make(map[string]bool, len(responses)+4)
	for k, v := range responses {
		out[k] = v
	}
	if result == nil {
		return out
	}

	set := func(id string, value *bool) {
		if value != nil {
			out[id] = *value
		}
	}
	set(fleet.ChecklistManometer, result.ManometerOK)
	set(fleet.ChecklistSeal, result.SealOK)
	set(fleet.ChecklistHose, result.HoseOK)
	set(fleet.ChecklistCasing, result.CasingOK)
	return out
}

// DataURL normaliza a imagem para o formato data URL.
func DataURL(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return "data:image/jpeg;base64," + image
}
