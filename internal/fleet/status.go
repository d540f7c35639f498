package fleet

import (
	"sort"
	"time"
)

// NearExpiryWindow delimita quantos dias antes da validade o extintor entra em alerta.
const NearExpiryWindow = 30 * 24 * time.Hour

// DisplayStatus deriva o status exibido a partir da validade e da flag de manutenção.
// Validade vencida sempre prevalece; o valor "expired" gravado é ignorado quando a data ainda é futura.
func (e Extinguisher) DisplayStatus(now time.Time) Status {
	if e.Expired(now) {
		return StatusExpired
	}
	if e.Status == StatusMaintenance {
		return StatusMaintenance
	}
	return StatusActive
}

// Expired indica validade anterior a now. Datas ilegíveis não contam como vencidas.
func (e Extinguisher) Expired(now time.Time) bool {
	expiry, err := ParseDate(e.ExpiryDate)
	if err != nil {
		return false
	}
	return expiry.Before(now)
}

// NearExpiry indica validade futura dentro da janela de alerta.
func (e Extinguisher) NearExpiry(now time.Time) bool {
	expiry, err := ParseDate(e.ExpiryDate)
	if err != nil {
		return false
	}
	diff := expiry.Sub(now)
	return diff > 0 && diff < NearExpiryWindow
}

// DaysToExpiry devolve dias inteiros até a validade (negativo quando vencido).
func (e Extinguisher) DaysToExpiry(now time.Time) (int, bool) {
	expiry, err := ParseDate(e.ExpiryDate)
	if err != nil {
		return 0, false
	}
	return int(expiry.Sub(now).Hours() / 24), true
}

// Stats agrega números do painel.
type Stats struct {
	Total      int            `json:"total"`
	Expired    int            `json:"expired"`
	NearExpiry int            `json:"nearExpiry"`
	Active     int            `json:"active"`
	ByType     map[string]int `json:"byType"`
}

// Summarize calcula os indicadores do painel administrativo.
func Summarize(extinguishers []Extinguisher, now time.Time) Stats {
	stats := Stats{Total: len(extinguishers), ByType: make(map[string]int)}
	for _, e := range extinguishers {
		if e.Expired(now) {
			stats.Expired++
		} else if e.NearExpiry(now) {
			stats.NearExpiry++
		}
		stats.ByType[e.Type]++
	}
	stats.Active = stats.Total - stats.Expired - stats.NearExpiry
	return stats
}

// EvaluateResponses define Conforme somente quando todas as respostas são positivas.
func EvaluateResponses(responses map[string]bool) InspectionStatus {
	for _, ok := range responses {
		if !ok {
			return InspectionNonConforming
		}
	}
	return InspectionOK
}

// HistoryEntry junta a inspeção ao código do extintor.
type HistoryEntry struct {
	Inspection
	ExtinguisherCode string `json:"extinguisherCode"`
}

// History ordena inspeções da mais recente para a mais antiga.
func History(inspections []Inspection, extinguishers []Extinguisher) []HistoryEntry {
	codes := make(map[string]string, len(extinguishers))
	for _, e := range extinguishers {
		codes[e.ID] = e.Code
	}

	entries := make([]HistoryEntry, 0, len(inspections))
	for _, ins := range inspections {
		code, ok := codes[ins.ExtinguisherID]
		if !ok || code == "" {
			code = "N/A"
		}
		entries = append(entries, HistoryEntry{Inspection: ins, ExtinguisherCode: code})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return inspectionTime(entries[i].Date).After(inspectionTime(entries[j].Date))
	})
	return entries
}

func inspectionTime(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
