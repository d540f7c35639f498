package monitor

import (
	"sync"
	"time"
)

// Severity classifica o alerta.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Tipos de alerta emitidos pelo monitor.
const (
	AlertExpired    = "expired"
	AlertNearExpiry = "near_expiry"
)

// Alert é um aviso emitido para um extintor.
type Alert struct {
	ExtinguisherID string     `json:"extinguisherId"`
	Code           string     `json:"code"`
	Location       string     `json:"location"`
	AlertType      string     `json:"alertType"`
	Severity       Severity   `json:"severity"`
	Message        string     `json:"message"`
	TriggeredAt    time.Time  `json:"triggeredAt"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
}

// alertLog guarda os alertas recentes em memória e controla a repetição.
type alertLog struct {
	mu     sync.Mutex
	recent []Alert
	last   map[string]time.Time
	limit  int
}

func newAlertLog(limit int) *alertLog {
	return &alertLog{last: make(map[string]time.Time), limit: limit}
}

func throttleKey(extinguisherID, alertType string) string {
	return extinguisherID + "|" + alertType
}

// shouldThrottle informa se o mesmo alerta já saiu dentro da janela.
func (l *alertLog) shouldThrottle(extinguisherID, alertType string, now time.Time, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.last[throttleKey(extinguisherID, alertType)]
	return ok && now.Sub(at) < window
}

func (l *alertLog) insert(alert Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[throttleKey(alert.ExtinguisherID, alert.AlertType)] = alert.TriggeredAt
	l.recent = append(l.recent, alert)
	if over := len(l.recent) - l.limit; over > 0 {
		l.recent = append([]Alert(nil), l.recent[over:]...)
	}
}

func (l *alertLog) markDelivered(extinguisherID, alertType string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.recent) - 1; i >= 0; i-- {
		if l.recent[i].ExtinguisherID == extinguisherID && l.recent[i].AlertType == alertType {
			l.recent[i].DeliveredAt = &at
			return
		}
	}
}

// latest devolve até n alertas, do mais novo para o mais antigo.
func (l *alertLog) latest(n int) []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.recent) {
		n = len(l.recent)
	}
	out := make([]Alert, 0, n)
	for i := len(l.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.recent[i])
	}
	return out
}
