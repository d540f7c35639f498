package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/metrics"
)

var (
	// ErrNoRemote indica que não há banco remoto para reenviar divergências.
	ErrNoRemote = errors.New("nenhuma conexão remota configurada")
	// ErrMissingLocal indica divergência cujo registro não está mais no espelho local.
	ErrMissingLocal = errors.New("registro ausente no espelho local")
)

// Operações registradas no controle de sincronização.
const (
	OpUpsert         = "upsert"
	OpDelete         = "delete"
	OpReplace        = "replace"
	OpInsert         = "insert"
	OpLastInspection = "last_inspection"
)

// Divergence é uma gravação aceita localmente que o remoto recusou.
type Divergence struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	RecordID  string    `json:"recordId,omitempty"`
	Error     string    `json:"error"`
	At        time.Time `json:"at"`
}

func (d Divergence) key() string {
	return d.Entity + "|" + d.Operation + "|" + d.RecordID
}

// SyncReport resume uma rodada de reenvio.
type SyncReport struct {
	Resolved  int          `json:"resolved"`
	Remaining []Divergence `json:"remaining"`
}

// resyncRank ordena o reenvio: catálogos antes de extintores, extintores antes de inspeções.
func resyncRank(d Divergence) int {
	switch d.Entity {
	case EntityExtinguisherTypes, EntityChecklist:
		return 0
	case EntityUsers, EntitySystemConfig:
		return 1
	case EntityExtinguishers:
		if d.Operation == OpLastInspection {
			return 4
		}
		return 2
	case EntityInspections:
		return 3
	}
	return 5
}

func (f *Facade) remoteWriteFailed(ctx context.Context, entity, operation, recordID string, cause error) {
	f.logger.Error().
		Err(cause).
		Str("entity", entity).
		Str("operation", operation).
		Str("record_id", recordID).
		Msg("gravação remota falhou; registro mantido apenas no espelho local")
	metrics.RemoteWriteFailures.WithLabelValues(entity, operation).Inc()

	f.recordDivergence(ctx, Divergence{
		Entity:    entity,
		Operation: operation,
		RecordID:  recordID,
		Error:     cause.Error(),
		At:        f.now().UTC(),
	})
}

func (f *Facade) recordDivergence(ctx context.Context, d Divergence) {
	unlock := f.locks.lock(cache.KeySyncPending)
	defer unlock()

	pending, _ := readLocal[Divergence](ctx, f, "sync", cache.KeySyncPending)

	// gravar e apagar o mesmo usuário se anulam: fica só a última intenção.
	if d.Entity == EntityUsers {
		pending = dropUserOps(pending, d.RecordID)
	}

	replaced := false
	for i := range pending {
		if pending[i].key() == d.key() {
			pending[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		pending = append(pending, d)
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeySyncPending, pending); err != nil {
		f.logger.Error().Err(err).Msg("falha ao registrar divergência")
		return
	}
	metrics.PendingSync.Set(float64(len(pending)))
}

// clearDivergences remove as pendências de um registro já resolvido no remoto.
func (f *Facade) clearDivergences(ctx context.Context, entity, recordID string) {
	unlock := f.locks.lock(cache.KeySyncPending)
	defer unlock()

	pending, found := readLocal[Divergence](ctx, f, "sync", cache.KeySyncPending)
	if !found {
		return
	}
	kept := make([]Divergence, 0, len(pending))
	for _, p := range pending {
		if p.Entity == entity && p.RecordID == recordID {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == len(pending) {
		return
	}
	if err := cache.SetJSON(ctx, f.local, cache.KeySyncPending, kept); err != nil {
		f.logger.Error().Err(err).Msg("falha ao limpar divergência")
		return
	}
	metrics.PendingSync.Set(float64(len(kept)))
}

// pendingRecords devolve os ids com gravação local ainda não aceita pelo remoto.
func (f *Facade) pendingRecords(ctx context.Context, entity string) map[string]struct{} {
	unlock := f.locks.lock(cache.KeySyncPending)
	defer unlock()

	pending, _ := readLocal[Divergence](ctx, f, "sync", cache.KeySyncPending)
	ids := map[string]struct{}{}
	for _, p := range pending {
		if p.Entity != entity || p.RecordID == "" {
			continue
		}
		switch p.Operation {
		case OpUpsert, OpInsert, OpLastInspection:
			ids[p.RecordID] = struct{}{}
		}
	}
	return ids
}

// withPending sobrepõe à leitura as versões locais dos registros pendentes, para que
// uma gravação feita depois que o remoto volta não os apague do espelho.
func withPending[T any](ctx context.Context, f *Facade, entity, key string, items []T, id func(T) string) []T {
	ids := f.pendingRecords(ctx, entity)
	if len(ids) == 0 {
		return items
	}

	local, _ := readLocal[T](ctx, f, entity, key)
	for _, rec := range local {
		rid := id(rec)
		if _, ok := ids[rid]; !ok {
			continue
		}
		replaced := false
		for i := range items {
			if id(items[i]) == rid {
				items[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			items = append(items, rec)
		}
	}
	return items
}

func dropUserOps(pending []Divergence, id string) []Divergence {
	kept := pending[:0]
	for _, p := range pending {
		if p.Entity == EntityUsers && p.RecordID == id {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// PendingSync lista as divergências ainda não reenviadas.
func (f *Facade) PendingSync(ctx context.Context) []Divergence {
	unlock := f.locks.lock(cache.KeySyncPending)
	defer unlock()

	pending, _ := readLocal[Divergence](ctx, f, "sync", cache.KeySyncPending)
	metrics.PendingSync.Set(float64(len(pending)))
	return pending
}

// Resync reenvia ao remoto o estado local de cada divergência e remove as que passam.
// Não há reenvio automático; só roda quando chamado.
func (f *Facade) Resync(ctx context.Context) (SyncReport, error) {
	if f.remote == nil {
		return SyncReport{}, ErrNoRemote
	}

	unlock := f.locks.lock(cache.KeySyncPending)
	defer unlock()

	pending, _ := readLocal[Divergence](ctx, f, "sync", cache.KeySyncPending)
	sort.SliceStable(pending, func(i, j int) bool {
		return resyncRank(pending[i]) < resyncRank(pending[j])
	})

	report := SyncReport{Remaining: []Divergence{}}
	for _, d := range pending {
		if err := f.replay(ctx, d); err != nil {
			f.logger.Warn().Err(err).Str("entity", d.Entity).Str("record_id", d.RecordID).Msg("reenvio falhou")
			d.Error = err.Error()
			d.At = f.now().UTC()
			report.Remaining = append(report.Remaining, d)
			continue
		}
		report.Resolved++
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeySyncPending, report.Remaining); err != nil {
		return report, fmt.Errorf("gravar pendências: %w", err)
	}
	metrics.PendingSync.Set(float64(len(report.Remaining)))

	f.logger.Info().Int("resolved", report.Resolved).Int("remaining", len(report.Remaining)).Msg("sincronização concluída")
	return report, nil
}

// replay envia o estado local atual. Registro ausente do espelho continua pendente.
func (f *Facade) replay(ctx context.Context, d Divergence) error {
	switch d.Entity + "|" + d.Operation {
	case EntityUsers + "|" + OpUpsert:
		users, _ := readLocal[fleet.StoredUser](ctx, f, EntityUsers, cache.KeyUsers)
		for _, u := range users {
			if u.ID == d.RecordID {
				return f.remote.UpsertUser(ctx, u)
			}
		}
		return ErrMissingLocal
	case EntityUsers + "|" + OpDelete:
		return f.remote.DeleteUser(ctx, d.RecordID)
	case EntitySystemConfig + "|" + OpUpsert:
		return f.remote.UpsertSystemConfig(ctx, f.localSystemConfig(ctx))
	case EntityExtinguisherTypes + "|" + OpReplace:
		types, _ := readLocal[fleet.ExtinguisherType](ctx, f, EntityExtinguisherTypes, cache.KeyExtinguisherTypes)
		return f.remote.ReplaceExtinguisherTypes(ctx, types)
	case EntityChecklist + "|" + OpReplace:
		items, _ := readLocal[fleet.ChecklistItem](ctx, f, EntityChecklist, cache.KeyChecklist)
		return f.remote.ReplaceChecklistItems(ctx, items)
	case EntityExtinguishers + "|" + OpUpsert:
		exts, _ := readLocal[fleet.Extinguisher](ctx, f, EntityExtinguishers, cache.KeyExtinguishers)
		for _, e := range exts {
			if e.ID == d.RecordID {
				return f.remote.UpsertExtinguisher(ctx, e)
			}
		}
		return ErrMissingLocal
	case EntityExtinguishers + "|" + OpLastInspection:
		exts, _ := readLocal[fleet.Extinguisher](ctx, f, EntityExtinguishers, cache.KeyExtinguishers)
		for _, e := range exts {
			if e.ID == d.RecordID && e.LastInspectionID != "" {
				return f.remote.SetLastInspection(ctx, e.ID, e.LastInspectionID)
			}
		}
		return ErrMissingLocal
	case EntityInspections + "|" + OpInsert:
		inspections, _ := readLocal[fleet.Inspection](ctx, f, EntityInspections, cache.KeyInspections)
		for _, ins := range inspections {
			if ins.ID == d.RecordID {
				return f.remote.InsertInspection(ctx, ins)
			}
		}
		return ErrMissingLocal
	}
	return fmt.Errorf("operação desconhecida %s/%s", d.Entity, d.Operation)
}
