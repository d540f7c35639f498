// Package persist implementa a fachada de persistência: leitura remota com
// queda para o espelho local e gravação dupla (local primeiro, remoto em seguida).
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/metrics"
)

// Remote é o contrato do banco remoto consumido pela fachada.
// *remote.Repository satisfaz esta interface.
type Remote interface {
	Probe(ctx context.Context) error

	ListUsers(ctx context.Context) ([]fleet.StoredUser, error)
	UpsertUser(ctx context.Context, user fleet.StoredUser) error
	DeleteUser(ctx context.Context, id string) error

	GetSystemConfig(ctx context.Context) (fleet.SystemConfig, error)
	UpsertSystemConfig(ctx context.Context, cfg fleet.SystemConfig) error

	ListExtinguisherTypes(ctx context.Context) ([]fleet.ExtinguisherType, error)
	ReplaceExtinguisherTypes(ctx context.Context, types []fleet.ExtinguisherType) error

	ListChecklistItems(ctx context.Context) ([]fleet.ChecklistItem, error)
	ReplaceChecklistItems(ctx context.Context, items []fleet.ChecklistItem) error

	ListExtinguishers(ctx context.Context) ([]fleet.Extinguisher, error)
	UpsertExtinguisher(ctx context.Context, ext fleet.Extinguisher) error
	SetLastInspection(ctx context.Context, extinguisherID, inspectionID string) error

	ListInspections(ctx context.Context) ([]fleet.Inspection, error)
	InsertInspection(ctx context.Context, ins fleet.Inspection) error
}

// Nomes de entidade usados em logs, métricas e no registro de divergências.
const (
	EntityUsers             = "users"
	EntitySystemConfig      = "system_config"
	EntityExtinguisherTypes = "extinguisher_types"
	EntityChecklist         = "checklist_items"
	EntityExtinguishers     = "extinguishers"
	EntityInspections       = "inspections"
)

// Facade concentra leitura e gravação de todas as coleções.
type Facade struct {
	local  cache.Store
	remote Remote
	logger zerolog.Logger
	locks  *keyLocks
	now    func() time.Time
}

// New cria a fachada. remote nil significa modo somente local.
func New(local cache.Store, remote Remote, logger zerolog.Logger) *Facade {
	return &Facade{
		local:  local,
		remote: remote,
		logger: logger,
		locks:  &keyLocks{locks: make(map[string]*sync.Mutex)},
		now:    time.Now,
	}
}

// WithRemote devolve uma nova fachada sobre o mesmo espelho local com outra conexão remota.
func (f *Facade) WithRemote(remote Remote) *Facade {
	return &Facade{
		local:  f.local,
		remote: remote,
		logger: f.logger,
		locks:  f.locks,
		now:    f.now,
	}
}

// HasRemote informa se há conexão remota configurada.
func (f *Facade) HasRemote() bool {
	return f.remote != nil
}

// Local expõe o espelho local para componentes que guardam estado auxiliar nele.
func (f *Facade) Local() cache.Store {
	return f.local
}

// readCollection tenta o remoto e, em qualquer falha, devolve o último documento local.
func readCollection[T any](ctx context.Context, f *Facade, entity, key string, fetch func(context.Context) ([]T, error)) []T {
	if items, ok := readRemote(ctx, f, entity, fetch); ok {
		return items
	}
	items, _ := readLocal[T](ctx, f, entity, key)
	return items
}

// readRemote devolve a coleção remota e se a leitura foi aceita.
func readRemote[T any](ctx context.Context, f *Facade, entity string, fetch func(context.Context) ([]T, error)) ([]T, bool) {
	if f.remote == nil {
		return nil, false
	}
	items, err := fetch(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Str("entity", entity).Msg("leitura remota falhou; usando espelho local")
		metrics.RemoteFallbacks.WithLabelValues(entity).Inc()
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

// readLocal devolve o documento local e se ele existia.
func readLocal[T any](ctx context.Context, f *Facade, entity, key string) ([]T, bool) {
	var items []T
	found, err := cache.GetJSON(ctx, f.local, key, &items)
	if err != nil {
		f.logger.Error().Err(err).Str("entity", entity).Msg("leitura do espelho local falhou")
		return []T{}, false
	}
	if !found || items == nil {
		return []T{}, found
	}
	return items, true
}

type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock serializa leitura-modificação-escrita de uma chave local.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
