package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/gestaozabele/fireguard/internal/db"
	"github.com/gestaozabele/fireguard/internal/remote"
)

// Dial abre um pool para o DSN e confirma com uma leitura mínima dentro do prazo.
// Em caso de falha o pool é fechado.
func Dial(ctx context.Context, dsn string, timeout time.Duration) (*remote.Repository, error) {
	if err := Validate(dsn); err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	repo := remote.NewRepository(pool)

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := repo.Probe(probeCtx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return repo, nil
}
