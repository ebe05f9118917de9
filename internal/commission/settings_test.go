package commission

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSettingsSaveValidation(t *testing.T) {
	db := newTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	tests := []struct {
		name     string
		supplier string
		roaster  string
		wantErr  bool
	}{
		{"typical rates", "5", "3", false},
		{"boundary zero", "0", "0", false},
		{"boundary hundred", "100", "100", false},
		{"fractional", "2.75", "1.25", false},
		{"negative supplier", "-1", "3", true},
		{"over hundred roaster", "5", "100.01", true},
		{"not a number", "five", "3", true},
		{"empty", "", "3", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, 1, tt.supplier, tt.roaster, 1)
			if tt.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("Save(%q, %q) error = %v, want ValidationError", tt.supplier, tt.roaster, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Save(%q, %q) unexpected error: %v", tt.supplier, tt.roaster, err)
			}
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, 1)
	if !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("Get before save error = %v, want ErrSettingsNotFound", err)
	}

	if _, err := store.Save(ctx, 1, "5", "3", 42); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Saving again upserts the same tenant row rather than failing.
	if _, err := store.Save(ctx, 1, "7.5", "2.5", 42); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	rates, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rates.Supplier.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("supplier rate = %s, want 7.5", rates.Supplier)
	}
	if !rates.Roaster.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("roaster rate = %s, want 2.5", rates.Roaster)
	}
}
