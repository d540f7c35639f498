package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

// Seed grava tipos e checklist padrão quando a leitura volta vazia e garante
// os usuários padrão no espelho local. Pode rodar várias vezes.
func (f *Facade) Seed(ctx context.Context) error {
	if len(f.GetExtinguisherTypes(ctx)) == 0 {
		if err := f.SaveExtinguisherTypes(ctx, fleet.DefaultExtinguisherTypes()); err != nil {
			return fmt.Errorf("semear tipos: %w", err)
		}
		f.logger.Info().Msg("tipos de extintor padrão gravados")
	}

	if len(f.GetChecklistItems(ctx)) == 0 {
		if err := f.SaveChecklistItems(ctx, fleet.DefaultChecklistItems()); err != nil {
			return fmt.Errorf("semear checklist: %w", err)
		}
		f.logger.Info().Msg("checklist padrão gravado")
	}

	f.GetUsers(ctx)
	return nil
}
