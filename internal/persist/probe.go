package persist

import (
	"context"
	"time"

	"github.com/gestaozabele/fireguard/internal/metrics"
)

// ConnectionState é a classificação informativa do banco remoto.
type ConnectionState string

const (
	StateOnline  ConnectionState = "online"
	StateOffline ConnectionState = "offline"
	StateLocal   ConnectionState = "local"
)

// DefaultProbeTimeout limita a sondagem de conexão.
const DefaultProbeTimeout = 4 * time.Second

// Probe faz uma leitura mínima no remoto dentro do prazo e classifica o resultado.
func (f *Facade) Probe(ctx context.Context, timeout time.Duration) ConnectionState {
	if f.remote == nil {
		metrics.ConnectionState.Set(-1)
		return StateLocal
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := f.remote.Probe(ctx); err != nil {
		f.logger.Warn().Err(err).Dur("timeout", timeout).Msg("banco remoto indisponível")
		metrics.ConnectionState.Set(0)
		return StateOffline
	}
	metrics.ConnectionState.Set(1)
	return StateOnline
}
