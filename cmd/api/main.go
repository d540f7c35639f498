package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/fireguard/internal/analysis"
	"github.com/gestaozabele/fireguard/internal/auth"
	"github.com/gestaozabele/fireguard/internal/bootstrap"
	"github.com/gestaozabele/fireguard/internal/config"
	internalhttp "github.com/gestaozabele/fireguard/internal/http"
	"github.com/gestaozabele/fireguard/internal/monitor"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/service"
	"github.com/gestaozabele/fireguard/internal/settings"
	"github.com/gestaozabele/fireguard/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	local, closeLocal, err := bootstrap.OpenLocalStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cache local: %w", err)
	}
	defer closeLocal()

	connService := settings.NewService(settings.NewRepository(local), cfg.RemoteDSN)
	persistLogger := log.With().Str("component", "persist").Logger()
	remote, closeRemote := bootstrap.ConnectRemote(ctx, connService, persistLogger)

	store := persist.NewHandle(persist.New(local, remote, persistLogger), closeRemote)
	defer store.Close()

	bootstrap.Start(ctx, store, cfg.ProbeTimeout, cfg.StartupWatchdog, persistLogger)

	uploader, err := newUploader(cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	analyzer := analysis.New(cfg.Analysis.APIKey, cfg.Analysis.Model, log.With().Str("component", "analysis").Logger())

	var monitorService *monitor.Service
	if cfg.Monitoring.Enabled {
		var notifier monitor.Notifier
		if slack := monitor.NewSlackNotifier(cfg.Monitoring.SlackWebhook); slack != nil {
			notifier = slack
		}
		monitorService = monitor.NewService(
			func() monitor.FleetSource { return store.Facade() },
			cfg.Monitoring,
			log.With().Str("component", "monitor").Logger(),
			notifier,
		)
		monitorService.Start(ctx)
		defer monitorService.Stop()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	serviceLogger := log.With().Str("component", "service").Logger()

	handler := internalhttp.NewRouter(cfg, internalhttp.Services{
		Auth:        service.NewAuthService(store, jwtManager),
		Users:       service.NewUserService(store, cfg.PasswordHashing),
		Fleet:       service.NewFleetService(store),
		Inspections: service.NewInspectionService(store, analyzer, uploader, serviceLogger),
		Catalog:     service.NewCatalogService(store),
		System:      service.NewSystemService(store, connService, uploader, service.DialPostgres, cfg.ProbeTimeout, serviceLogger),
		Monitor:     monitorService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newUploader(cfg *config.Config) (storage.Uploader, error) {
	if !cfg.Storage.Enabled() {
		return storage.NoopUploader{}, nil
	}
	uploader, err := storage.NewS3Uploader(storage.S3Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		PublicDomain: cfg.Storage.PublicDomain,
	})
	if err != nil {
		return nil, err
	}
	return uploader, nil
}
