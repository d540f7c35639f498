package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/metrics"
)

// GetSystemConfig devolve a configuração remota, a local ou a de fábrica, nesta ordem.
func (f *Facade) GetSystemConfig(ctx context.Context) fleet.SystemConfig {
	if f.remote != nil {
		cfg, err := f.remote.GetSystemConfig(ctx)
		if err == nil {
			return cfg
		}
		f.logger.Warn().Err(err).Str("entity", EntitySystemConfig).Msg("leitura remota falhou; usando espelho local")
		metrics.RemoteFallbacks.WithLabelValues(EntitySystemConfig).Inc()
	}
	return f.localSystemConfig(ctx)
}

func (f *Facade) localSystemConfig(ctx context.Context) fleet.SystemConfig {
	var cfg fleet.SystemConfig
	found, err := cache.GetJSON(ctx, f.local, cache.KeySystemConfig, &cfg)
	if err != nil {
		f.logger.Error().Err(err).Str("entity", EntitySystemConfig).Msg("leitura do espelho local falhou")
		return fleet.DefaultSystemConfig()
	}
	if !found {
		return fleet.DefaultSystemConfig()
	}
	return cfg
}

// SaveSystemConfig grava a linha única de configuração.
func (f *Facade) SaveSystemConfig(ctx context.Context, cfg fleet.SystemConfig) error {
	unlock := f.locks.lock(cache.KeySystemConfig)
	defer unlock()

	if err := cache.SetJSON(ctx, f.local, cache.KeySystemConfig, cfg); err != nil {
		return fmt.Errorf("gravar configuração localmente: %w", err)
	}

	if f.remote != nil {
		if err := f.remote.UpsertSystemConfig(ctx, cfg); err != nil {
			f.remoteWriteFailed(ctx, EntitySystemConfig, OpUpsert, "", err)
		}
	}
	return nil
}

// ResetSystemConfig volta para o nome padrão e remove o logotipo.
func (f *Facade) ResetSystemConfig(ctx context.Context) (fleet.SystemConfig, error) {
	cfg := fleet.DefaultSystemConfig()
	return cfg, f.SaveSystemConfig(ctx, cfg)
}
