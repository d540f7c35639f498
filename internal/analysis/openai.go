package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/gestaozabele/fireguard/internal/metrics"
)

const prompt = `Analise esta foto de um extintor de incêndio. Verifique:
1. O manômetro está na faixa verde?
2. O lacre está visível e intacto?
3. A mangueira parece estar em boas condições?
4. Existe algum dano visível no casco?
Responda em JSON com os campos: manometerOk (boolean), sealOk (boolean), hoseOk (boolean), casingOk (boolean), confidenceScore (0-1), e observation (string em português).`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIAnalyzer usa um modelo multimodal com resposta em JSON.
type OpenAIAnalyzer struct {
	client chatClient
	model  string
	logger zerolog.Logger
}

// NewOpenAIAnalyzer cria o analisador com a chave e o modelo informados.
func NewOpenAIAnalyzer(apiKey, model string, logger zerolog.Logger) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{client: openai.NewClient(apiKey), model: model, logger: logger}
}

// New escolhe a implementação conforme a chave.
func New(apiKey, model string, logger zerolog.Logger) Analyzer {
	if apiKey == "" {
		return NoopAnalyzer{}
	}
	return NewOpenAIAnalyzer(apiKey, model, logger)
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, image string) (*Result, error) {
	if image == "" {
		return nil, ErrEmptyImage
	}

	start := time.Now()
	defer func() { metrics.AnalysisDuration.Observe(time.Since(start).Seconds()) }()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: DataURL(image), Detail: openai.ImageURLDetailAuto},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("análise de foto falhou")
		return nil, fmt.Errorf("análise de foto: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	result, err := ParseResult(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Error().Err(err).Msg("resposta de análise inválida")
		return nil, err
	}
	return result, nil
}
