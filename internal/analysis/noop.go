package analysis

import "context"

// NoopAnalyzer é usado quando não há chave configurada.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Analyze(ctx context.Context, image string) (*Result, error) {
	return nil, ErrDisabled
}
