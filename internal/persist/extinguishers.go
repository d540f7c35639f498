package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

// GetExtinguishers devolve a frota.
func (f *Facade) GetExtinguishers(ctx context.Context) []fleet.Extinguisher {
	unlock := f.locks.lock(cache.KeyExtinguishers)
	defer unlock()
	return f.extinguishers(ctx)
}

func (f *Facade) extinguishers(ctx context.Context) []fleet.Extinguisher {
	return readCollection(ctx, f, EntityExtinguishers, cache.KeyExtinguishers, f.listRemoteExtinguishers)
}

func (f *Facade) extinguishersForWrite(ctx context.Context) []fleet.Extinguisher {
	return withPending(ctx, f, EntityExtinguishers, cache.KeyExtinguishers, f.extinguishers(ctx), func(e fleet.Extinguisher) string { return e.ID })
}

func (f *Facade) listRemoteExtinguishers(ctx context.Context) ([]fleet.Extinguisher, error) {
	return f.remote.ListExtinguishers(ctx)
}

// GetExtinguisher procura um extintor pelo id.
func (f *Facade) GetExtinguisher(ctx context.Context, id string) (fleet.Extinguisher, error) {
	for _, e := range f.GetExtinguishers(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return fleet.Extinguisher{}, fleet.ErrNotFound
}

// SaveExtinguisher cria ou substitui o extintor pelo id. O status gravado não é recalculado.
func (f *Facade) SaveExtinguisher(ctx context.Context, ext fleet.Extinguisher) error {
	unlock := f.locks.lock(cache.KeyExtinguishers)
	defer unlock()

	current := f.extinguishersForWrite(ctx)
	replaced := false
	for i := range current {
		if current[i].ID == ext.ID {
			current[i] = ext
			replaced = true
			break
		}
	}
	if !replaced {
		current = append(current, ext)
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeyExtinguishers, current); err != nil {
		return fmt.Errorf("gravar extintores localmente: %w", err)
	}

	if f.remote != nil {
		if err := f.remote.UpsertExtinguisher(ctx, ext); err != nil {
			f.remoteWriteFailed(ctx, EntityExtinguishers, OpUpsert, ext.ID, err)
		}
	}
	return nil
}

// markLastInspection atualiza a referência no espelho local.
func (f *Facade) markLastInspection(ctx context.Context, extinguisherID, inspectionID string) {
	unlock := f.locks.lock(cache.KeyExtinguishers)
	defer unlock()

	exts, _ := readLocal[fleet.Extinguisher](ctx, f, EntityExtinguishers, cache.KeyExtinguishers)
	found := false
	for i := range exts {
		if exts[i].ID == extinguisherID {
			exts[i].LastInspectionID = inspectionID
			found = true
			break
		}
	}
	if !found {
		f.logger.Debug().Str("extinguisher_id", extinguisherID).Msg("extintor ausente no espelho local")
		return
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeyExtinguishers, exts); err != nil {
		f.logger.Error().Err(err).Str("extinguisher_id", extinguisherID).Msg("falha ao marcar última inspeção localmente")
	}
}
