package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMiss indica chave ainda não gravada.
var ErrMiss = errors.New("cache: chave inexistente")

// Chaves do espelho local, uma por coleção.
const (
	KeyExtinguishers     = "fireguard_extinguishers"
	KeyInspections       = "fireguard_inspections"
	KeyChecklist         = "fireguard_checklist_items"
	KeyExtinguisherTypes = "fireguard_extinguisher_types"
	KeySystemConfig      = "fireguard_system_config"
	KeyUsers             = "fireguard_users"
	KeySyncPending       = "fireguard_sync_pending"
	KeyRemoteDSN         = "fireguard_remote_dsn"
)

// Store é o armazenamento chave-valor local que espelha cada coleção como documento JSON.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodifica o documento da chave. Retorna false quando a chave não existe.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache: documento %s corrompido: %w", key, err)
	}
	return true, nil
}

// SetJSON serializa e grava o documento inteiro.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: serializar %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
