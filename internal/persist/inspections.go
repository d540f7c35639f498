package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/metrics"
)

// GetInspections devolve todas as inspeções.
func (f *Facade) GetInspections(ctx context.Context) []fleet.Inspection {
	unlock := f.locks.lock(cache.KeyInspections)
	defer unlock()
	return f.inspections(ctx)
}

func (f *Facade) inspections(ctx context.Context) []fleet.Inspection {
	return readCollection(ctx, f, EntityInspections, cache.KeyInspections, f.listRemoteInspections)
}

func (f *Facade) listRemoteInspections(ctx context.Context) ([]fleet.Inspection, error) {
	return f.remote.ListInspections(ctx)
}

// SaveInspection acrescenta a inspeção e aponta o extintor para ela.
// A atualização do extintor no remoto é uma segunda gravação independente.
func (f *Facade) SaveInspection(ctx context.Context, ins fleet.Inspection) error {
	if ins.Responses == nil {
		ins.Responses = map[string]bool{}
	}

	unlock := f.locks.lock(cache.KeyInspections)
	base := withPending(ctx, f, EntityInspections, cache.KeyInspections, f.inspections(ctx), func(i fleet.Inspection) string { return i.ID })
	current := append(base, ins)
	err := cache.SetJSON(ctx, f.local, cache.KeyInspections, current)
	unlock()
	if err != nil {
		return fmt.Errorf("gravar inspeções localmente: %w", err)
	}

	metrics.InspectionsRecorded.WithLabelValues(string(ins.Status)).Inc()

	if ins.ExtinguisherID != "" {
		f.markLastInspection(ctx, ins.ExtinguisherID, ins.ID)
	}

	if f.remote == nil {
		return nil
	}

	if err := f.remote.InsertInspection(ctx, ins); err != nil {
		f.remoteWriteFailed(ctx, EntityInspections, OpInsert, ins.ID, err)
		if ins.ExtinguisherID != "" {
			f.remoteWriteFailed(ctx, EntityExtinguishers, OpLastInspection, ins.ExtinguisherID, err)
		}
		return nil
	}

	if ins.ExtinguisherID != "" {
		if err := f.remote.SetLastInspection(ctx, ins.ExtinguisherID, ins.ID); err != nil {
			f.remoteWriteFailed(ctx, EntityExtinguishers, OpLastInspection, ins.ExtinguisherID, err)
		}
	}
	return nil
}
