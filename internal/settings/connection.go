// Package settings guarda a conexão com o banco remoto: primeiro o ambiente,
// depois o valor informado pelo administrador e gravado no espelho local.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/db"
)

var (
	ErrNotFound    = errors.New("conexão remota não configurada")
	ErrInvalidDSN  = errors.New("string de conexão inválida")
	// ErrUnreachable indica DSN válido cujo banco não respondeu à sondagem.
	ErrUnreachable = errors.New("banco remoto inacessível")
)

// Source indica de onde veio a conexão ativa.
type Source string

const (
	SourceEnv   Source = "env"
	SourceLocal Source = "local"
	SourceNone  Source = "none"
)

// Connection é a conexão remota efetiva.
type Connection struct {
	DSN       string
	Source    Source
	UpdatedAt time.Time
}

// SanitizedConnection é a visão segura devolvida à interface, sem senha.
type SanitizedConnection struct {
	Configured bool      `json:"configured"`
	Source     Source    `json:"source"`
	Host       string    `json:"host,omitempty"`
	Port       uint16    `json:"port,omitempty"`
	Database   string    `json:"database,omitempty"`
	User       string    `json:"user,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

type storedConnection struct {
	DSN       string    `json:"dsn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository lê e grava a conexão no espelho local.
type Repository struct {
	store cache.Store
}

func NewRepository(store cache.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Get(ctx context.Context) (*Connection, error) {
	var stored storedConnection
	found, err := cache.GetJSON(ctx, r.store, cache.KeyRemoteDSN, &stored)
	if err != nil {
		return nil, err
	}
	if !found || strings.TrimSpace(stored.DSN) == "" {
		return nil, ErrNotFound
	}
	return &Connection{DSN: stored.DSN, Source: SourceLocal, UpdatedAt: stored.UpdatedAt}, nil
}

func (r *Repository) Save(ctx context.Context, dsn string, at time.Time) error {
	return cache.SetJSON(ctx, r.store, cache.KeyRemoteDSN, storedConnection{DSN: dsn, UpdatedAt: at})
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, cache.KeyRemoteDSN)
}

// Service aplica a precedência ambiente > espelho local.
type Service struct {
	repo   *Repository
	envDSN string
}

func NewService(repo *Repository, envDSN string) *Service {
	return &Service{repo: repo, envDSN: strings.TrimSpace(envDSN)}
}

// Current devolve a conexão efetiva ou ErrNotFound.
func (s *Service) Current(ctx context.Context) (*Connection, error) {
	if s.envDSN != "" {
		return &Connection{DSN: s.envDSN, Source: SourceEnv}, nil
	}
	return s.repo.Get(ctx)
}

// Sanitized devolve a conexão efetiva sem credenciais.
func (s *Service) Sanitized(ctx context.Context) (*SanitizedConnection, error) {
	conn, err := s.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &SanitizedConnection{Source: SourceNone}, nil
		}
		return nil, err
	}
	return sanitize(conn), nil
}

// Update valida e grava o DSN informado pelo administrador.
// Quando o ambiente define uma conexão, ela continua prevalecendo.
func (s *Service) Update(ctx context.Context, dsn string) (*Connection, error) {
	dsn = strings.TrimSpace(dsn)
	if err := Validate(dsn); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, dsn, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("gravar conexão: %w", err)
	}
	return s.Current(ctx)
}

// Clear remove o DSN local.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// EnvOverride informa se o ambiente fixa a conexão.
func (s *Service) EnvOverride() bool {
	return s.envDSN != ""
}

// Validate confere se o DSN é uma URL/DSN postgres aceita pelo driver.
func Validate(dsn string) error {
	if _, err := db.ParseDSN(dsn); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}
	return nil
}

func sanitize(conn *Connection) *SanitizedConnection {
	out := &SanitizedConnection{Configured: true, Source: conn.Source, UpdatedAt: conn.UpdatedAt}
	cfg, err := db.ParseDSN(conn.DSN)
	if err != nil {
		return out
	}
	out.Host = cfg.ConnConfig.Host
	out.Port = cfg.ConnConfig.Port
	out.Database = cfg.ConnConfig.Database
	out.User = cfg.ConnConfig.User
	return out
}
