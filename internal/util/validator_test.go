package util

import (
	"errors"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"admin", "brigadista", "joao.silva", "b_2"} {
		if err := ValidateUsername(ok); err != nil {
			t.Fatalf("expected %q valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "João", "com espaço", "ADMIN"} {
		if err := ValidateUsername(bad); err == nil {
			t.Fatalf("expected %q invalid", bad)
		}
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := ValidateDate("31/12/2026", "expiryDate")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "expiryDate" {
		t.Fatalf("expected validation error for expiryDate, got %v", err)
	}
	if err := ValidateDate("2026-12-31", "expiryDate"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("fogo123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("123"); err == nil {
		t.Fatal("expected short password error")
	}
}
