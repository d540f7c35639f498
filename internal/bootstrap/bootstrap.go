// Package bootstrap monta o espelho local e a conexão remota usados por cmd/api e cmd/fleet.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/config"
	"github.com/gestaozabele/fireguard/internal/db"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/remote"
	"github.com/gestaozabele/fireguard/internal/settings"
)

// OpenLocalStore abre o redis quando REDIS_URL está definido; senão o arquivo sqlite.
func OpenLocalStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis parse: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return cache.NewRedisStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	}

	store, err := cache.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// ConnectRemote resolve o DSN efetivo e cria o pool sem sondar.
// Sem DSN, ou com DSN inutilizável, devolve remote nil (modo somente local).
func ConnectRemote(ctx context.Context, conn *settings.Service, logger zerolog.Logger) (persist.Remote, func()) {
	current, err := conn.Current(ctx)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			logger.Warn().Err(err).Msg("não foi possível ler a conexão remota; seguindo somente local")
		}
		return nil, nil
	}

	pool, err := db.NewPool(ctx, current.DSN)
	if err != nil {
		logger.Warn().Err(err).Str("source", string(current.Source)).Msg("conexão remota inválida; seguindo somente local")
		return nil, nil
	}
	repo := remote.NewRepository(pool)
	logger.Info().Str("source", string(current.Source)).Msg("conexão remota configurada")
	return repo, repo.Close
}

// Start semeia e sonda o remoto. Se o watchdog estourar antes, descarta o remoto,
// semeia só o espelho local e segue em modo local.
func Start(ctx context.Context, handle *persist.Handle, probeTimeout, watchdog time.Duration, logger zerolog.Logger) persist.ConnectionState {
	startCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan persist.ConnectionState, 1)
	go func() {
		facade := handle.Facade()
		if err := facade.Seed(startCtx); err != nil {
			logger.Warn().Err(err).Msg("seed inicial falhou")
		}
		done <- facade.Probe(startCtx, probeTimeout)
	}()

	select {
	case state := <-done:
		logger.Info().Str("state", string(state)).Msg("conexão classificada")
		return state
	case <-time.After(watchdog):
	}

	cancel()
	logger.Warn().Dur("watchdog", watchdog).Msg("inicialização travou; seguindo somente com o espelho local")
	local := handle.Swap(nil, nil)
	if err := local.Seed(ctx); err != nil {
		logger.Warn().Err(err).Msg("seed local falhou")
	}
	return local.Probe(ctx, probeTimeout)
}
