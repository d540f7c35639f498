package service

import (
	"context"
	"strings"

	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/util"
)

// CatalogService mantém os tipos de extintor e o checklist de inspeção.
type CatalogService struct {
	store *persist.Handle
}

func NewCatalogService(store *persist.Handle) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Types(ctx context.Context) []fleet.ExtinguisherType {
	return s.store.Facade().GetExtinguisherTypes(ctx)
}

func (s *CatalogService) Checklist(ctx context.Context) []fleet.ChecklistItem {
	return s.store.Facade().GetChecklistItems(ctx)
}

// ReplaceTypes valida e grava a lista inteira. Itens sem id recebem um novo.
func (s *CatalogService) ReplaceTypes(ctx context.Context, types []fleet.ExtinguisherType) ([]fleet.ExtinguisherType, error) {
	seen := make(map[string]struct{}, len(types))
	out := make([]fleet.ExtinguisherType, 0, len(types))
	for _, t := range types {
		t.ID = strings.TrimSpace(t.ID)
		t.Name = strings.TrimSpace(t.Name)
		if err := util.RequireString(t.Name, "nome do tipo"); err != nil {
			return nil, err
		}
		if t.ID == "" {
			t.ID = fleet.NewID()
		}
		if _, dup := seen[t.ID]; dup {
			return nil, util.Invalid("id", "id de tipo repetido: "+t.ID)
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}

	if err := s.store.Facade().SaveExtinguisherTypes(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceChecklist valida e grava o checklist inteiro. Itens sem id recebem um novo.
func (s *CatalogService) ReplaceChecklist(ctx context.Context, items []fleet.ChecklistItem) ([]fleet.ChecklistItem, error) {
	seen := make(map[string]struct{}, len(items))
	out := make([]fleet.ChecklistItem, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.Label = strings.TrimSpace(item.Label)
		if err := util.RequireString(item.Label, "descrição do item"); err != nil {
			return nil, err
		}
		if item.ID == "" {
			item.ID = fleet.NewID()
		}
		if _, dup := seen[item.ID]; dup {
			return nil, util.Invalid("id", "id de item repetido: "+item.ID)
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}

	if err := s.store.Facade().SaveChecklistItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}
