package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

// GetExtinguisherTypes devolve o catálogo de tipos; vazio se nada foi semeado.
func (f *Facade) GetExtinguisherTypes(ctx context.Context) []fleet.ExtinguisherType {
	return readCollection(ctx, f, EntityExtinguisherTypes, cache.KeyExtinguisherTypes, f.listRemoteTypes)
}

func (f *Facade) listRemoteTypes(ctx context.Context) ([]fleet.ExtinguisherType, error) {
	return f.remote.ListExtinguisherTypes(ctx)
}

// SaveExtinguisherTypes substitui o catálogo inteiro.
func (f *Facade) SaveExtinguisherTypes(ctx context.Context, types []fleet.ExtinguisherType) error {
	if types == nil {
		types = []fleet.ExtinguisherType{}
	}

	unlock := f.locks.lock(cache.KeyExtinguisherTypes)
	defer unlock()

	if err := cache.SetJSON(ctx, f.local, cache.KeyExtinguisherTypes, types); err != nil {
		return fmt.Errorf("gravar tipos localmente: %w", err)
	}

	if f.remote != nil {
		if err := f.remote.ReplaceExtinguisherTypes(ctx, types); err != nil {
			f.remoteWriteFailed(ctx, EntityExtinguisherTypes, OpReplace, "", err)
		}
	}
	return nil
}

// GetChecklistItems devolve o checklist de inspeção.
func (f *Facade) GetChecklistItems(ctx context.Context) []fleet.ChecklistItem {
	return readCollection(ctx, f, EntityChecklist, cache.KeyChecklist, f.listRemoteChecklist)
}

func (f *Facade) listRemoteChecklist(ctx context.Context) ([]fleet.ChecklistItem, error) {
	return f.remote.ListChecklistItems(ctx)
}

// SaveChecklistItems substitui o checklist inteiro.
func (f *Facade) SaveChecklistItems(ctx context.Context, items []fleet.ChecklistItem) error {
	if items == nil {
		items = []fleet.ChecklistItem{}
	}

	unlock := f.locks.lock(cache.KeyChecklist)
	defer unlock()

	if err := cache.SetJSON(ctx, f.local, cache.KeyChecklist, items); err != nil {
		return fmt.Errorf("gravar checklist localmente: %w", err)
	}

	if f.remote != nil {
		if err := f.remote.ReplaceChecklistItems(ctx, items); err != nil {
			f.remoteWriteFailed(ctx, EntityChecklist, OpReplace, "", err)
		}
	}
	return nil
}
