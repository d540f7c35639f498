package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/util"
)

func newFleetService(t *testing.T) *FleetService {
	t.Helper()
	svc := NewFleetService(newLocalHandle(t))
	svc.now = fixedNow
	return svc
}

func validInput(code, expiry string) ExtinguisherInput {
	return ExtinguisherInput{
		Code:            code,
		Type:            "Pó Químico Seco",
		Capacity:        "4kg",
		Location:        "Bloco A",
		ManufactureDate: "2021-01-10",
		ExpiryDate:      expiry,
		Status:          "active",
	}
}

func TestFleetListDerivesDisplayStatus(t *testing.T) {
	svc := newFleetService(t)
	ctx := context.Background()

	expired := validInput("EXT-001", "2026-05-01")
	if _, err := svc.Create(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	stale := validInput("EXT-002", "2030-01-01")
	stale.Status = "expired"
	if _, err := svc.Create(ctx, stale); err != nil {
		t.Fatalf("create stale: %v", err)
	}
	maint := validInput("EXT-003", "2026-06-15")
	maint.Status = "maintenance"
	if _, err := svc.Create(ctx, maint); err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	want := map[string]fleet.Status{
		"EXT-001": fleet.StatusExpired,
		"EXT-002": fleet.StatusActive,
		"EXT-003": fleet.StatusMaintenance,
	}
	views := svc.List(ctx, "")
	if len(views) != 3 {
		t.Fatalf("expected 3 extinguishers, got %d", len(views))
	}
	for _, v := range views {
		if v.DisplayStatus != want[v.Code] {
			t.Fatalf("%s: expected %s, got %s", v.Code, want[v.Code], v.DisplayStatus)
		}
		if v.Code == "EXT-003" && !v.NearExpiry {
			t.Fatal("expected EXT-003 near expiry")
		}
	}

	if got := svc.List(ctx, "ext-002"); len(got) != 1 || got[0].Code != "EXT-002" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestFleetCreateValidation(t *testing.T) {
	svc := newFleetService(t)
	ctx := context.Background()

	var vErr *util.ValidationError
	bad := validInput("EXT-010", "31/12/2027")
	if _, err := svc.Create(ctx, bad); !errors.As(err, &vErr) {
		t.Fatalf("expected date validation error, got %v", err)
	}
	bad = validInput("EXT-010", "2027-12-31")
	bad.Status = "quebrado"
	if _, err := svc.Create(ctx, bad); !errors.As(err, &vErr) {
		t.Fatalf("expected status validation error, got %v", err)
	}

	if _, err := svc.Create(ctx, validInput("EXT-010", "2027-12-31")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, validInput("ext-010", "2028-12-31")); !errors.As(err, &vErr) || vErr.Field != "code" {
		t.Fatalf("expected duplicate code error, got %v", err)
	}
}

func TestFleetUpdateKeepsIdentity(t *testing.T) {
	svc := newFleetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("EXT-020", "2027-12-31"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput("EXT-020", "2028-12-31")
	input.Location = "Garagem"
	updated, err := svc.Update(ctx, created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Location != "Garagem" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if got := svc.List(ctx, ""); len(got) != 1 {
		t.Fatalf("expected update in place, got %d items", len(got))
	}

	if _, err := svc.Update(ctx, "nope", input); !errors.Is(err, fleet.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboardSummarizes(t *testing.T) {
	handle := newLocalHandle(t)
	svc := NewFleetService(handle)
	svc.now = fixedNow
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput("EXT-001", "2026-05-01")); err != nil {
		t.Fatal(err)
	}
	near, err := svc.Create(ctx, validInput("EXT-002", "2026-06-10"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, validInput("EXT-003", "2029-01-01")); err != nil {
		t.Fatal(err)
	}

	facade := handle.Facade()
	for _, ins := range []fleet.Inspection{
		{ID: "i1", ExtinguisherID: near.ID, Date: "2026-05-01T10:00:00Z", Status: fleet.InspectionOK},
		{ID: "i2", ExtinguisherID: "sumiu", Date: "2026-05-20T10:00:00Z", Status: fleet.InspectionNonConforming},
	} {
		if err := facade.SaveInspection(ctx, ins); err != nil {
			t.Fatal(err)
		}
	}

	d := svc.Dashboard(ctx, 1)
	if d.Stats.Total != 3 || d.Stats.Expired != 1 || d.Stats.NearExpiry != 1 || d.Stats.Active != 1 {
		t.Fatalf("unexpected stats: %+v", d.Stats)
	}
	if len(d.RecentInspections) != 1 || d.RecentInspections[0].ID != "i2" || d.RecentInspections[0].ExtinguisherCode != "N/A" {
		t.Fatalf("unexpected recent inspections: %+v", d.RecentInspections)
	}
	if len(d.Attention) != 2 || d.Attention[0].Code != "EXT-001" {
		t.Fatalf("unexpected attention list: %+v", d.Attention)
	}
}
