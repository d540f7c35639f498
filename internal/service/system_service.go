package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/settings"
	"github.com/gestaozabele/fireguard/internal/storage"
	"github.com/gestaozabele/fireguard/internal/util"
)

// ErrConnectionLocked indica que o ambiente fixa a conexão remota.
var ErrConnectionLocked = errors.New("conexão remota definida no ambiente; altere REMOTE_DSN")

// Dialer abre uma conexão remota e devolve a função que a encerra.
type Dialer func(ctx context.Context, dsn string, timeout time.Duration) (persist.Remote, func(), error)

// DialPostgres é o Dialer padrão sobre pgxpool.
func DialPostgres(ctx context.Context, dsn string, timeout time.Duration) (persist.Remote, func(), error) {
	repo, err := settings.Dial(ctx, dsn, timeout)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

// StatusReport é o retrato público da instância.
type StatusReport struct {
	State   persist.ConnectionState `json:"state"`
	AppName string                  `json:"appName"`
	Pending int                     `json:"pendingSync"`
}

// SystemConfigInput é o formulário de identidade visual.
type SystemConfigInput struct {
	AppName string `json:"appName"`
	LogoURL string `json:"logoUrl"`
}

// SystemService administra identidade visual, conexão remota e sincronização.
type SystemService struct {
	store        *persist.Handle
	conn         *settings.Service
	uploader     storage.Uploader
	dial         Dialer
	probeTimeout time.Duration
	logger       zerolog.Logger
}

func NewSystemService(store *persist.Handle, conn *settings.Service, uploader storage.Uploader, dial Dialer, probeTimeout time.Duration, logger zerolog.Logger) *SystemService {
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	if dial == nil {
		dial = DialPostgres
	}
	if probeTimeout <= 0 {
		probeTimeout = persist.DefaultProbeTimeout
	}
	return &SystemService{
		store:        store,
		conn:         conn,
		uploader:     uploader,
		dial:         dial,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

func (s *SystemService) Config(ctx context.Context) fleet.SystemConfig {
	return s.store.Facade().GetSystemConfig(ctx)
}

// SaveConfig grava nome e logo. Logos em data URL vão para o bucket quando configurado.
func (s *SystemService) SaveConfig(ctx context.Context, input SystemConfigInput) (fleet.SystemConfig, error) {
	name := strings.TrimSpace(input.AppName)
	if err := util.RequireString(name, "nome da aplicação"); err != nil {
		return fleet.SystemConfig{}, err
	}

	cfg := fleet.SystemConfig{AppName: name, LogoURL: strings.TrimSpace(input.LogoURL)}
	if storage.IsDataURL(cfg.LogoURL) {
		url, err := storage.PutDataURL(ctx, s.uploader, "branding", "logo-"+fleet.NewID(), cfg.LogoURL)
		switch {
		case err == nil:
			cfg.LogoURL = url
		case errors.Is(err, storage.ErrInvalidDataURL):
			return fleet.SystemConfig{}, util.Invalid("logoUrl", "logo inválido")
		case !errors.Is(err, storage.ErrNotConfigured):
			s.logger.Warn().Err(err).Msg("upload do logo falhou; mantendo logo inline")
		}
	}

	if err := s.store.Facade().SaveSystemConfig(ctx, cfg); err != nil {
		return fleet.SystemConfig{}, err
	}
	return cfg, nil
}

// ResetConfig volta à identidade de fábrica.
func (s *SystemService) ResetConfig(ctx context.Context) (fleet.SystemConfig, error) {
	return s.store.Facade().ResetSystemConfig(ctx)
}

// Status sonda o remoto e resume o estado da instância.
func (s *SystemService) Status(ctx context.Context) StatusReport {
	facade := s.store.Facade()
	return StatusReport{
		State:   facade.Probe(ctx, s.probeTimeout),
		AppName: facade.GetSystemConfig(ctx).AppName,
		Pending: len(facade.PendingSync(ctx)),
	}
}

// Connection devolve a conexão efetiva sem credenciais.
func (s *SystemService) Connection(ctx context.Context) (*settings.SanitizedConnection, error) {
	return s.conn.Sanitized(ctx)
}

// TestConnection abre e fecha uma conexão com o DSN informado.
func (s *SystemService) TestConnection(ctx context.Context, dsn string) error {
	if err := settings.Validate(strings.TrimSpace(dsn)); err != nil {
		return util.Invalid("dsn", err.Error())
	}
	_, closeRemote, err := s.dial(ctx, strings.TrimSpace(dsn), s.probeTimeout)
	if err != nil {
		return err
	}
	closeRemote()
	return nil
}

// UpdateConnection confirma o novo DSN, grava no espelho local e troca a conexão ativa.
func (s *SystemService) UpdateConnection(ctx context.Context, dsn string) (*settings.SanitizedConnection, error) {
	if s.conn.EnvOverride() {
		return nil, ErrConnectionLocked
	}
	dsn = strings.TrimSpace(dsn)
	if err := settings.Validate(dsn); err != nil {
		return nil, util.Invalid("dsn", err.Error())
	}

	remote, closeRemote, err := s.dial(ctx, dsn, s.probeTimeout)
	if err != nil {
		return nil, err
	}
	if _, err := s.conn.Update(ctx, dsn); err != nil {
		closeRemote()
		return nil, err
	}

	facade := s.store.Swap(remote, closeRemote)
	if err := facade.Seed(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("seed após troca de conexão falhou")
	}
	s.logger.Info().Msg("conexão remota atualizada")
	return s.conn.Sanitized(ctx)
}

// ClearConnection remove o DSN local e passa a operar só com o espelho.
func (s *SystemService) ClearConnection(ctx context.Context) error {
	if s.conn.EnvOverride() {
		return ErrConnectionLocked
	}
	if err := s.conn.Clear(ctx); err != nil {
		return fmt.Errorf("limpar conexão: %w", err)
	}
	s.store.Swap(nil, nil)
	return nil
}

func (s *SystemService) PendingSync(ctx context.Context) []persist.Divergence {
	return s.store.Facade().PendingSync(ctx)
}

func (s *SystemService) Resync(ctx context.Context) (persist.SyncReport, error) {
	return s.store.Facade().Resync(ctx)
}
