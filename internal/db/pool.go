package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEmptyDSN indica ausência de conexão remota configurada.
var ErrEmptyDSN = errors.New("db: dsn vazio")

// ParseDSN valida a string de conexão sem abrir conexões.
func ParseDSN(dsn string) (*pgxpool.Config, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("db: dsn inválido: %w", err)
	}
	return cfg, nil
}

// NewPool cria o pool. A conexão é preguiçosa: um banco fora do ar não impede a criação.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: criar pool: %w", err)
	}
	return pool, nil
}
