// Package monitor verifica periodicamente a validade da frota e avisa sobre
// extintores vencidos ou perto de vencer. Nunca grava na frota.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/config"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

// FleetSource fornece a frota atual (a fachada de persistência).
type FleetSource interface {
	GetExtinguishers(ctx context.Context) []fleet.Extinguisher
}

// Service executa verificações periódicas e expõe os alertas recentes.
type Service struct {
	source   func() FleetSource
	cfg      config.MonitoringConfig
	notifier Notifier
	logger   zerolog.Logger
	alerts   *alertLog
	now      func() time.Time

	once   sync.Once
	cancel context.CancelFunc
}

// NewService recebe uma função para obter a frota, já que a conexão remota pode ser trocada em execução.
func NewService(source func() FleetSource, cfg config.MonitoringConfig, logger zerolog.Logger, notifier Notifier) *Service {
	return &Service{
		source:   source,
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		alerts:   newAlertLog(200),
		now:      time.Now,
	}
}

// Start inicia loop periódico. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop encerra loop periódico.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) runLoop(ctx context.Context) {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("monitor: loop iniciado")
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("monitor: loop encerrado")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce avalia a frota e devolve os alertas emitidos nesta rodada.
func (s *Service) RunOnce(ctx context.Context) []Alert {
	now := s.now()
	var emitted []Alert

	for _, ext := range s.source().GetExtinguishers(ctx) {
		candidate, ok := evaluate(ext, now)
		if !ok {
			continue
		}
		if s.alerts.shouldThrottle(ext.ID, candidate.AlertType, now, s.window()) {
			continue
		}
		s.alerts.insert(candidate)
		emitted = append(emitted, candidate)
		s.deliver(ctx, candidate)
	}

	if len(emitted) > 0 {
		s.logger.Info().Int("alerts", len(emitted)).Msg("monitor: alertas de validade emitidos")
	}
	return emitted
}

func (s *Service) deliver(ctx context.Context, alert Alert) {
	if s.notifier == nil {
		return
	}
	msg := AlertMessage{
		Title:    fmt.Sprintf("Extintor %s (%s)", alert.Code, alert.Location),
		Text:     alert.Message,
		Severity: alert.Severity,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("extinguisher", alert.Code).Msg("monitor: falha ao enviar alerta")
		return
	}
	s.alerts.markDelivered(alert.ExtinguisherID, alert.AlertType, s.now())
}

func (s *Service) window() time.Duration {
	if s.cfg.AlertWindow <= 0 {
		return 24 * time.Hour
	}
	return s.cfg.AlertWindow
}

// Alerts devolve os alertas mais recentes.
func (s *Service) Alerts(limit int) []Alert {
	return s.alerts.latest(limit)
}

func evaluate(ext fleet.Extinguisher, now time.Time) (Alert, bool) {
	days, ok := ext.DaysToExpiry(now)
	if !ok {
		return Alert{}, false
	}

	alert := Alert{
		ExtinguisherID: ext.ID,
		Code:           ext.Code,
		Location:       ext.Location,
		TriggeredAt:    now,
	}
	switch {
	case ext.Expired(now):
		alert.AlertType = AlertExpired
		alert.Severity = SeverityCritical
		alert.Message = fmt.Sprintf("Validade vencida em %s", ext.ExpiryDate)
	case ext.NearExpiry(now):
		alert.AlertType = AlertNearExpiry
		alert.Severity = SeverityWarning
		alert.Message = fmt.Sprintf("Vence em %d dias (%s)", days, ext.ExpiryDate)
	default:
		return Alert{}, false
	}
	return alert, true
}
