package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/util"
)

// ExtinguisherView acrescenta os campos derivados exibidos na lista.
type ExtinguisherView struct {
	fleet.Extinguisher
	DisplayStatus fleet.Status `json:"displayStatus"`
	NearExpiry    bool         `json:"nearExpiry"`
	DaysToExpiry  *int         `json:"daysToExpiry,omitempty"`
}

// ExtinguisherInput agrupa os campos editáveis do extintor.
type ExtinguisherInput struct {
	Code            string `json:"code"`
	Type            string `json:"type"`
	Capacity        string `json:"capacity"`
	Location        string `json:"location"`
	ManufactureDate string `json:"manufactureDate"`
	ExpiryDate      string `json:"expiryDate"`
	Status          string `json:"status"`
}

// Dashboard resume a frota para o painel administrativo.
type Dashboard struct {
	Stats             fleet.Stats          `json:"stats"`
	RecentInspections []fleet.HistoryEntry `json:"recentInspections"`
	Attention         []ExtinguisherView   `json:"attention"`
}

// FleetService concentra as regras de cadastro e consulta da frota.
type FleetService struct {
	store *persist.Handle
	now   func() time.Time
}

func NewFleetService(store *persist.Handle) *FleetService {
	return &FleetService{store: store, now: time.Now}
}

func (s *FleetService) view(e fleet.Extinguisher, now time.Time) ExtinguisherView {
	v := ExtinguisherView{Extinguisher: e, DisplayStatus: e.DisplayStatus(now), NearExpiry: e.NearExpiry(now)}
	if days, ok := e.DaysToExpiry(now); ok {
		v.DaysToExpiry = &days
	}
	return v
}

// List devolve a frota com status derivado, filtrada por código ou local quando query não é vazia.
func (s *FleetService) List(ctx context.Context, query string) []ExtinguisherView {
	now := s.now()
	query = strings.ToLower(strings.TrimSpace(query))

	exts := s.store.Facade().GetExtinguishers(ctx)
	out := make([]ExtinguisherView, 0, len(exts))
	for _, e := range exts {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Code), query) &&
			!strings.Contains(strings.ToLower(e.Location), query) {
			continue
		}
		out = append(out, s.view(e, now))
	}
	return out
}

func (s *FleetService) Get(ctx context.Context, id string) (ExtinguisherView, error) {
	e, err := s.store.Facade().GetExtinguisher(ctx, id)
	if err != nil {
		return ExtinguisherView{}, err
	}
	return s.view(e, s.now()), nil
}

func (s *FleetService) Create(ctx context.Context, input ExtinguisherInput) (ExtinguisherView, error) {
	ext, err := s.fromInput(ctx, fleet.Extinguisher{ID: fleet.NewID()}, input)
	if err != nil {
		return ExtinguisherView{}, err
	}
	if err := s.store.Facade().SaveExtinguisher(ctx, ext); err != nil {
		return ExtinguisherView{}, err
	}
	return s.view(ext, s.now()), nil
}

// Update substitui os campos editáveis mantendo id e última inspeção.
func (s *FleetService) Update(ctx context.Context, id string, input ExtinguisherInput) (ExtinguisherView, error) {
	facade := s.store.Facade()
	current, err := facade.GetExtinguisher(ctx, id)
	if err != nil {
		return ExtinguisherView{}, err
	}
	ext, err := s.fromInput(ctx, current, input)
	if err != nil {
		return ExtinguisherView{}, err
	}
	if err := facade.SaveExtinguisher(ctx, ext); err != nil {
		return ExtinguisherView{}, err
	}
	return s.view(ext, s.now()), nil
}

func (s *FleetService) fromInput(ctx context.Context, base fleet.Extinguisher, input ExtinguisherInput) (fleet.Extinguisher, error) {
	code := strings.TrimSpace(input.Code)
	if err := util.RequireString(code, "código"); err != nil {
		return fleet.Extinguisher{}, err
	}
	if err := util.RequireString(input.Type, "tipo"); err != nil {
		return fleet.Extinguisher{}, err
	}
	if err := util.ValidateDate(input.ManufactureDate, "manufactureDate"); err != nil {
		return fleet.Extinguisher{}, err
	}
	if err := util.ValidateDate(input.ExpiryDate, "expiryDate"); err != nil {
		return fleet.Extinguisher{}, err
	}
	status := fleet.NormalizeStatus(input.Status)
	if !fleet.IsValidStatus(status) {
		return fleet.Extinguisher{}, util.Invalid("status", fleet.ErrInvalidStatus.Error())
	}

	for _, other := range s.store.Facade().GetExtinguishers(ctx) {
		if other.ID != base.ID && strings.EqualFold(other.Code, code) {
			return fleet.Extinguisher{}, util.Invalid("code", "código já cadastrado")
		}
	}

	base.Code = code
	base.Type = strings.TrimSpace(input.Type)
	base.Capacity = strings.TrimSpace(input.Capacity)
	base.Location = strings.TrimSpace(input.Location)
	base.ManufactureDate = strings.TrimSpace(input.ManufactureDate)
	base.ExpiryDate = strings.TrimSpace(input.ExpiryDate)
	base.Status = status
	return base, nil
}

// Dashboard calcula os indicadores, as últimas inspeções e os extintores que pedem atenção.
func (s *FleetService) Dashboard(ctx context.Context, recent int) Dashboard {
	now := s.now()
	facade := s.store.Facade()
	exts := facade.GetExtinguishers(ctx)
	history := fleet.History(facade.GetInspections(ctx), exts)
	if recent > 0 && len(history) > recent {
		history = history[:recent]
	}

	attention := []ExtinguisherView{}
	for _, e := range exts {
		if e.Expired(now) || e.NearExpiry(now) {
			attention = append(attention, s.view(e, now))
		}
	}
	sort.SliceStable(attention, func(i, j int) bool {
		return attention[i].ExpiryDate < attention[j].ExpiryDate
	})

	return Dashboard{
		Stats:             fleet.Summarize(exts, now),
		RecentInspections: history,
		Attention:         attention,
	}
}
