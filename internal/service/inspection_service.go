package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/analysis"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/metrics"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/storage"
	"github.com/gestaozabele/fireguard/internal/util"
)

// InspectionService registra inspeções e consulta o histórico.
type InspectionService struct {
	store    *persist.Handle
	analyzer analysis.Analyzer
	uploader storage.Uploader
	logger   zerolog.Logger
	now      func() time.Time
}

func NewInspectionService(store *persist.Handle, analyzer analysis.Analyzer, uploader storage.Uploader, logger zerolog.Logger) *InspectionService {
	if analyzer == nil {
		analyzer = analysis.NoopAnalyzer{}
	}
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	return &InspectionService{store: store, analyzer: analyzer, uploader: uploader, logger: logger, now: time.Now}
}

// SubmitInspectionInput é o formulário enviado pelo brigadista.
type SubmitInspectionInput struct {
	ExtinguisherID string          `json:"extinguisherId"`
	Responses      map[string]bool `json:"responses"`
	Notes          string          `json:"notes"`
	Photo          string          `json:"photo"`
}

// AnalyzeInput pede o pré-preenchimento a partir da foto.
type AnalyzeInput struct {
	Image     string          `json:"image"`
	Responses map[string]bool `json:"responses"`
	Notes     string          `json:"notes"`
}

// AnalyzeOutcome traz as respostas e observações sugeridas.
type AnalyzeOutcome struct {
	Responses map[string]bool  `json:"responses"`
	Notes     string           `json:"notes"`
	Result    *analysis.Result `json:"result"`
}

// DefaultResponses marca todos os itens do checklist como conformes.
func (s *InspectionService) DefaultResponses(ctx context.Context) map[string]bool {
	items := s.store.Facade().GetChecklistItems(ctx)
	responses := make(map[string]bool, len(items))
	for _, item := range items {
		responses[item.ID] = true
	}
	return responses
}

// Submit calcula o status a partir das respostas e grava a inspeção.
// Itens do checklist ausentes nas respostas contam como conformes.
func (s *InspectionService) Submit(ctx context.Context, input SubmitInspectionInput, inspector fleet.User) (fleet.Inspection, error) {
	if err := util.RequireString(input.ExtinguisherID, "extinguisherId"); err != nil {
		return fleet.Inspection{}, err
	}

	facade := s.store.Facade()
	if _, err := facade.GetExtinguisher(ctx, input.ExtinguisherID); err != nil {
		return fleet.Inspection{}, err
	}

	responses := s.DefaultResponses(ctx)
	for id, ok := range input.Responses {
		responses[id] = ok
	}

	ins := fleet.Inspection{
		ID:             fleet.NewID(),
		ExtinguisherID: input.ExtinguisherID,
		Date:           s.now().UTC().Format(time.RFC3339),
		Inspector:      inspector.Name,
		Responses:      responses,
		Notes:          strings.TrimSpace(input.Notes),
		Status:         fleet.EvaluateResponses(responses),
	}
	ins.PhotoURL = s.storePhoto(ctx, input.Photo, ins.ID)

	if err := facade.SaveInspection(ctx, ins); err != nil {
		return fleet.Inspection{}, err
	}
	return ins, nil
}

// storePhoto envia a foto ao bucket; sem bucket ou em falha o payload inline é mantido.
func (s *InspectionService) storePhoto(ctx context.Context, photo, id string) string {
	if !storage.IsDataURL(photo) {
		return photo
	}
	url, err := storage.PutDataURL(ctx, s.uploader, "inspections", id, photo)
	if err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			s.logger.Warn().Err(err).Str("inspection_id", id).Msg("upload da foto falhou; mantendo foto inline")
		}
		return photo
	}
	return url
}

// Analyze roda a análise da foto e aplica o resultado sobre as respostas atuais.
// O erro é devolvido para a interface avisar; o formulário segue utilizável.
func (s *InspectionService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutcome, error) {
	if strings.TrimSpace(input.Image) == "" {
		return nil, util.Invalid("image", "imagem obrigatória")
	}

	result, err := s.analyzer.Analyze(ctx, input.Image)
	if err != nil {
		metrics.AnalysisFailures.Inc()
		return nil, err
	}

	base := input.Responses
	if len(base) == 0 {
		base = s.DefaultResponses(ctx)
	}

	notes := input.Notes
	if result.Observation != "" {
		notes = result.Observation
	}

	return &AnalyzeOutcome{
		Responses: analysis.Prefill(base, result),
		Notes:     notes,
		Result:    result,
	}, nil
}

// List devolve as inspeções, opcionalmente de um único extintor.
func (s *InspectionService) List(ctx context.Context, extinguisherID string) []fleet.Inspection {
	inspections := s.store.Facade().GetInspections(ctx)
	if extinguisherID == "" {
		return inspections
	}
	out := []fleet.Inspection{}
	for _, ins := range inspections {
		if ins.ExtinguisherID == extinguisherID {
			out = append(out, ins)
		}
	}
	return out
}

// History devolve as inspeções da mais nova para a mais antiga com o código do extintor.
func (s *InspectionService) History(ctx context.Context) []fleet.HistoryEntry {
	facade := s.store.Facade()
	return fleet.History(facade.GetInspections(ctx), facade.GetExtinguishers(ctx))
}
