package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/config"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

type stubFleet struct {
	exts []fleet.Extinguisher
}

func (s stubFleet) GetExtinguishers(ctx context.Context) []fleet.Extinguisher {
	return s.exts
}

type recordingNotifier struct {
	messages []AlertMessage
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg AlertMessage) error {
	n.messages = append(n.messages, msg)
	return n.err
}

func newTestService(exts []fleet.Extinguisher, notifier Notifier, now time.Time) *Service {
	source := stubFleet{exts: exts}
	svc := NewService(func() FleetSource { return source }, config.MonitoringConfig{Enabled: true, AlertWindow: time.Hour}, zerolog.Nop(), notifier)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRunOnceEmitsExpiryAlerts(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	exts := []fleet.Extinguisher{
		{ID: "e1", Code: "EXT-001", Location: "Bloco A", ExpiryDate: "2026-01-01"},
		{ID: "e2", Code: "EXT-002", Location: "Bloco B", ExpiryDate: "2026-11-01"},
		{ID: "e3", Code: "EXT-003", Location: "Bloco C", ExpiryDate: "2028-01-01"},
		{ID: "e4", Code: "EXT-004", ExpiryDate: "sem data"},
	}
	notifier := &recordingNotifier{}
	svc := newTestService(exts, notifier, now)

	alerts := svc.RunOnce(context.Background())
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", alerts)
	}
	if alerts[0].AlertType != AlertExpired || alerts[0].Severity != SeverityCritical {
		t.Fatalf("unexpected first alert: %+v", alerts[0])
	}
	if alerts[1].AlertType != AlertNearExpiry || alerts[1].Severity != SeverityWarning {
		t.Fatalf("unexpected second alert: %+v", alerts[1])
	}
	if len(notifier.messages) != 2 || !strings.Contains(notifier.messages[0].Title, "EXT-001") {
		t.Fatalf("unexpected notifications: %+v", notifier.messages)
	}

	recent := svc.Alerts(10)
	if len(recent) != 2 || recent[0].Code != "EXT-002" || recent[0].DeliveredAt == nil {
		t.Fatalf("unexpected recent alerts: %+v", recent)
	}
}

func TestRunOnceThrottlesWithinWindow(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	exts := []fleet.Extinguisher{{ID: "e1", Code: "EXT-001", ExpiryDate: "2026-01-01"}}
	svc := newTestService(exts, nil, now)

	if got := svc.RunOnce(context.Background()); len(got) != 1 {
		t.Fatalf("expected first alert, got %+v", got)
	}
	if got := svc.RunOnce(context.Background()); len(got) != 0 {
		t.Fatalf("expected throttled alert, got %+v", got)
	}

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	if got := svc.RunOnce(context.Background()); len(got) != 1 {
		t.Fatalf("expected alert after window, got %+v", got)
	}
}

func TestFailedDeliveryIsNotMarked(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	exts := []fleet.Extinguisher{{ID: "e1", Code: "EXT-001", ExpiryDate: "2026-01-01"}}
	svc := newTestService(exts, &recordingNotifier{err: errors.New("timeout")}, now)

	svc.RunOnce(context.Background())
	if recent := svc.Alerts(0); len(recent) != 1 || recent[0].DeliveredAt != nil {
		t.Fatalf("unexpected alerts: %+v", recent)
	}
}

func TestSlackNotifierPostsText(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	if err := n.Notify(context.Background(), AlertMessage{Title: "Extintor EXT-001", Text: "Validade vencida", Severity: SeverityCritical}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(payload["text"], "*Extintor EXT-001*") {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if NewSlackNotifier("") != nil {
		t.Fatal("expected nil notifier without webhook")
	}
}
