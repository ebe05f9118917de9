package contract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"brewhub-system/internal/database/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Contract{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return NewService(db)
}

func createContract(t *testing.T, svc *Service, orderID int64) *models.Contract {
	t.Helper()
	row, err := svc.Create(context.Background(), CreateInput{
		TenantID: 1, OrderID: orderID, SupplierID: 10, RoasterID: 20,
		Amount: decimal.RequireFromString("2500"),
	})
	if err != nil {
		t.Fatalf("Failed to create contract: %v", err)
	}
	return row
}

func TestCreateContract(t *testing.T) {
	svc := newTestService(t)

	row := createContract(t, svc, 100)
	if row.Status != StatusPendingFunding {
		t.Errorf("status = %s, want %s", row.Status, StatusPendingFunding)
	}
	if row.Amount != "2500.00" {
		t.Errorf("amount = %s, want 2500.00", row.Amount)
	}

	_, err := svc.Create(context.Background(), CreateInput{
		TenantID: 1, OrderID: 101, SupplierID: 10, RoasterID: 20,
		Amount: decimal.Zero,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestContractTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		path    []string
		wantErr bool
	}{
		{"fund then release", []string{StatusFunded, StatusReleased}, false},
		{"fund then refund", []string{StatusFunded, StatusRefunded}, false},
		{"release before funding", []string{StatusReleased}, true},
		{"refund before funding", []string{StatusRefunded}, true},
		{"reopen released contract", []string{StatusFunded, StatusReleased, StatusFunded}, true},
		{"refund after release", []string{StatusFunded, StatusReleased, StatusRefunded}, true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			row := createContract(t, svc, int64(200+i))

			var err error
			for _, status := range tt.path {
				_, err = svc.SetStatus(ctx, row.ID, status)
				if err != nil {
					break
				}
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("timestamps follow the lifecycle", func(t *testing.T) {
		svc := newTestService(t)
		row := createContract(t, svc, 300)

		funded, err := svc.SetStatus(ctx, row.ID, StatusFunded)
		if err != nil {
			t.Fatalf("fund: %v", err)
		}
		reloaded, _ := svc.Get(ctx, funded.ID)
		if reloaded.FundedAt == nil {
			t.Error("funded_at not set")
		}
		if reloaded.ClosedAt != nil {
			t.Error("closed_at set before closure")
		}

		if _, err := svc.SetStatus(ctx, row.ID, StatusReleased); err != nil {
			t.Fatalf("release: %v", err)
		}
		reloaded, _ = svc.Get(ctx, row.ID)
		if reloaded.ClosedAt == nil {
			t.Error("closed_at not set on release")
		}
	})

	t.Run("same-state transition is a no-op", func(t *testing.T) {
		svc := newTestService(t)
		row := createContract(t, svc, 301)

		again, err := svc.SetStatus(ctx, row.ID, StatusPendingFunding)
		if err != nil {
			t.Fatalf("no-op: %v", err)
		}
		if again.Status != StatusPendingFunding {
			t.Errorf("status = %s, want %s", again.Status, StatusPendingFunding)
		}
	})

	t.Run("unknown contract", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.SetStatus(ctx, 99999, StatusFunded)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
