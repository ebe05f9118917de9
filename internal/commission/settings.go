package commission

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brewhub-system/internal/database/models"
)

// Rates is the pair of platform percentages applied to new commission
// records. Both are in [0,100].
type Rates struct {
	Supplier decimal.Decimal
	Roaster  decimal.Decimal
}

// SettingsStore reads and writes the singleton-per-tenant CommissionSettings
// row. Saving never recomputes existing commission records.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func validateRate(field, raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "not a number"}
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be between 0 and 100"}
	}
	return rate, nil
}

func (s *SettingsStore) Get(ctx context.Context, tenantID int64) (Rates, error) {
	var row models.CommissionSettings
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Rates{}, ErrSettingsNotFound
		}
		return Rates{}, &PersistenceError{Op: "load settings", Err: err}
	}

	supplier, err := decimal.NewFromString(row.SupplierRate)
	if err != nil {
		return Rates{}, &ValidationError{Field: "supplier_rate", Reason: "stored value is not a number"}
	}
	roaster, err := decimal.NewFromString(row.RoasterRate)
	if err != nil {
		return Rates{}, &ValidationError{Field: "roaster_rate", Reason: "stored value is not a number"}
	}
	return Rates{Supplier: supplier, Roaster: roaster}, nil
}

func (s *SettingsStore) Save(ctx context.Context, tenantID int64, supplierRate, roasterRate string, updatedBy int64) (Rates, error) {
	supplier, err := validateRate("supplier_rate", supplierRate)
	if err != nil {
		return Rates{}, err
	}
	roaster, err := validateRate("roaster_rate", roasterRate)
	if err != nil {
		return Rates{}, err
	}

	row := models.CommissionSettings{
		TenantID:     tenantID,
		SupplierRate: supplier.StringFixed(2),
		RoasterRate:  roaster.StringFixed(2),
		UpdatedBy:    updatedBy,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"supplier_rate", "roaster_rate", "updated_by", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return Rates{}, &PersistenceError{Op: "save settings", Err: err}
	}
	return Rates{Supplier: supplier, Roaster: roaster}, nil
}
