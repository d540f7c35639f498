package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireguard_remote_read_fallbacks_total",
		Help: "Leituras que caíram para o espelho local.",
	}, []string{"entity"})

	RemoteWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireguard_remote_write_failures_total",
		Help: "Gravações remotas que falharam depois da gravação local.",
	}, []string{"entity", "operation"})

	PendingSync = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fireguard_sync_pending",
		Help: "Registros divergentes aguardando reenvio.",
	})

	// ConnectionState vale 1 para online, 0 para offline e -1 para modo local.
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fireguard_remote_connection_state",
		Help: "Classificação da última sondagem do banco remoto.",
	})

	InspectionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireguard_inspections_recorded_total",
		Help: "Inspeções registradas por status.",
	}, []string{"status"})

	AnalysisDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "fireguard_photo_analysis_seconds",
		Help: "Duração das análises de foto.",
	})

	AnalysisFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fireguard_photo_analysis_failures_total",
		Help: "Análises de foto que falharam ou estavam desativadas.",
	})
)
