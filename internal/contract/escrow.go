package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brewhub-system/internal/database/models"
)

// Escrow contract statuses. Funds move strictly forward: a closed contract
// (released or refunded) never transitions again.
const (
	StatusPendingFunding = "pending_funding"
	StatusFunded         = "funded"
	StatusReleased       = "released"
	StatusRefunded       = "refunded"
)

var allowedTransitions = map[string][]string{
	StatusPendingFunding: {StatusFunded},
	StatusFunded:         {StatusReleased, StatusRefunded},
}

var (
	ErrNotFound          = errors.New("contract not found")
	ErrInvalidTransition = errors.New("contract status transition not allowed")
	ErrInvalidAmount     = errors.New("contract amount must be greater than zero")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	TenantID   int64
	OrderID    int64
	SupplierID int64
	RoasterID  int64
	Amount     decimal.Decimal
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Contract, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	row := models.Contract{
		TenantID:   input.TenantID,
		OrderID:    input.OrderID,
		SupplierID: input.SupplierID,
		RoasterID:  input.RoasterID,
		Amount:     input.Amount.StringFixed(2),
		Status:     StatusPendingFunding,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// lockForUpdate takes a row lock on backends that support it. SQLite has no
// FOR UPDATE; its single-writer model covers the same race.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetStatus applies one forward transition under a row lock, the same guard
// shape as commission status changes but with no confirmation gate.
func (s *Service) SetStatus(ctx context.Context, contractID int64, newStatus string) (*models.Contract, error) {
	var row models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&row, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if row.Status == newStatus {
			return nil
		}
		if !transitionAllowed(row.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, row.Status, newStatus)
		}

		now := time.Now()
		updates := map[string]interface{}{"status": newStatus}
		switch newStatus {
		case StatusFunded:
			updates["funded_at"] = now
		case StatusReleased, StatusRefunded:
			updates["closed_at"] = now
		}
		return tx.Model(&row).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Service) Get(ctx context.Context, contractID int64) (*models.Contract, error) {
	var row models.Contract
	if err := s.db.WithContext(ctx).First(&row, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID int64) ([]models.Contract, error) {
	var rows []models.Contract
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at desc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
