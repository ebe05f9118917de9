package commission

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brewhub-system/internal/database/models"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusCompleted
}

// TokenStore holds single-use confirmation tokens for the human-in-the-loop
// gate on pending -> completed transitions.
type TokenStore interface {
	Issue(ctx context.Context, recordIDs []int64, newStatus string) (string, error)
	Consume(ctx context.Context, token, newStatus string) ([]int64, error)
}

// AlertSink receives every successful commission creation. Delivery problems
// downstream must never surface back into the lifecycle.
type AlertSink interface {
	OnCommissionCreated(ctx context.Context, userID int64, amount, runningTotal decimal.Decimal)
}

// SummaryCache invalidation hook, satisfied by the redis summary cache.
type SummaryCache interface {
	Invalidate(ctx context.Context, tenantID int64)
}

type CreateInput struct {
	TenantID   int64
	OrderID    int64
	SupplierID int64
	RoasterID  int64
	OrderTotal decimal.Decimal
}

type Service struct {
	db       *gorm.DB
	settings *SettingsStore
	tokens   TokenStore
	sink     AlertSink
	cache    SummaryCache
}

func NewService(db *gorm.DB, settings *SettingsStore, tokens TokenStore, sink AlertSink, cache SummaryCache) *Service {
	return &Service{
		db:       db,
		settings: settings,
		tokens:   tokens,
		sink:     sink,
		cache:    cache,
	}
}

// Create snapshots the tenant's current rates onto a new pending record and
// derives the three commission amounts at currency precision. The snapshot is
// immutable: later settings changes never touch this record.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.CommissionRecord, error) {
	if !input.OrderTotal.IsPositive() {
		return nil, &ValidationError{Field: "order_total", Reason: "must be greater than zero"}
	}

	rates, err := s.settings.Get(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	supplierCommission := input.OrderTotal.Mul(rates.Supplier).Div(hundred).Round(2)
	roasterCommission := input.OrderTotal.Mul(rates.Roaster).Div(hundred).Round(2)
	totalCommission := supplierCommission.Add(roasterCommission)

	record := models.CommissionRecord{
		TenantID:           input.TenantID,
		OrderID:            input.OrderID,
		SupplierID:         input.SupplierID,
		RoasterID:          input.RoasterID,
		OrderTotal:         input.OrderTotal.StringFixed(2),
		SupplierRate:       rates.Supplier.StringFixed(2),
		RoasterRate:        rates.Roaster.StringFixed(2),
		SupplierCommission: supplierCommission.StringFixed(2),
		RoasterCommission:  roasterCommission.StringFixed(2),
		TotalCommission:    totalCommission.StringFixed(2),
		Status:             StatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, &PersistenceError{Op: "create commission", Err: err}
	}

	s.invalidate(ctx, input.TenantID)
	s.notifyCreated(ctx, &record, totalCommission)

	return &record, nil
}

func (s *Service) notifyCreated(ctx context.Context, record *models.CommissionRecord, amount decimal.Decimal) {
	if s.sink == nil {
		return
	}

	runningTotal, err := s.RunningTotal(ctx, record.TenantID)
	if err != nil {
		log.Printf("commission: running total for tenant %d unavailable, skipping alerts: %v", record.TenantID, err)
		return
	}

	var adminIDs []int64
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("tenant_id = ? AND role = ? AND is_active = ?", record.TenantID, models.RoleAdmin, true).
		Pluck("id", &adminIDs).Error
	if err != nil {
		log.Printf("commission: admin lookup for tenant %d failed, skipping alerts: %v", record.TenantID, err)
		return
	}

	for _, id := range adminIDs {
		s.sink.OnCommissionCreated(ctx, id, amount, runningTotal)
	}
}

// RunningTotal is the cumulative commission value for a tenant across both
// statuses, the input to the "total reached" trigger.
func (s *Service) RunningTotal(ctx context.Context, tenantID int64) (decimal.Decimal, error) {
	var row struct {
		Total string
	}
	err := s.db.WithContext(ctx).Model(&models.CommissionRecord{}).
		Select("COALESCE(SUM(total_commission), 0) as total").
		Where("tenant_id = ?", tenantID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, &PersistenceError{Op: "sum commissions", Err: err}
	}
	total, err := decimal.NewFromString(row.Total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RequestConfirmation issues the single-use token that authorizes a
// pending -> completed transition for exactly the given records.
func (s *Service) RequestConfirmation(ctx context.Context, recordIDs []int64, newStatus string) (string, error) {
	if !ValidStatus(newStatus) {
		return "", &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if len(recordIDs) == 0 {
		return "", &ValidationError{Field: "record_ids", Reason: "at least one record is required"}
	}
	if newStatus != StatusCompleted {
		return "", &ValidationError{Field: "status", Reason: "only pending -> completed requires confirmation"}
	}
	return s.tokens.Issue(ctx, recordIDs, newStatus)
}

func (s *Service) consumeConfirmation(ctx context.Context, token, newStatus string, recordIDs []int64) error {
	if token == "" {
		return ErrConfirmationRequired
	}
	covered, err := s.tokens.Consume(ctx, token, newStatus)
	if err != nil {
		return err
	}
	coveredSet := make(map[int64]bool, len(covered))
	for _, id := range covered {
		coveredSet[id] = true
	}
	for _, id := range recordIDs {
		if !coveredSet[id] {
			return ErrInvalidToken
		}
	}
	return nil
}

// SetStatus applies one guarded transition. Completing a pending record
// needs a confirmation token; the reverse direction and same-state no-ops do
// not. The stored row is the only source of truth: on store failure nothing
// is mutated and the caller may retry.
func (s *Service) SetStatus(ctx context.Context, recordID int64, newStatus, token string) (*models.CommissionRecord, error) {
	if !ValidStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}

	var record models.CommissionRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return &PersistenceError{Op: "load commission", Err: err}
		}

		if record.Status == newStatus {
			return nil
		}

		if record.Status == StatusPending && newStatus == StatusCompleted {
			if err := s.consumeConfirmation(ctx, token, newStatus, []int64{recordID}); err != nil {
				return err
			}
		}

		if err := tx.Model(&record).Update("status", newStatus).Error; err != nil {
			return &PersistenceError{Op: "update status", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, record.TenantID)
	return &record, nil
}

// BulkSetStatus applies one transition to every selected record in a single
// statement inside a transaction: either all rows reflect the new status
// afterwards or none do. The confirmation gate covers the whole batch when
// any member would cross pending -> completed.
func (s *Service) BulkSetStatus(ctx context.Context, recordIDs []int64, newStatus, token string) (int64, error) {
	if !ValidStatus(newStatus) {
		return 0, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if len(recordIDs) == 0 {
		return 0, &ValidationError{Field: "record_ids", Reason: "at least one record is required"}
	}

	var updated int64
	var tenantID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []models.CommissionRecord
		if err := lockForUpdate(tx).Where("id IN ?", recordIDs).Find(&records).Error; err != nil {
			return &PersistenceError{Op: "load commission batch", Err: err}
		}
		if len(records) != len(recordIDs) {
			return ErrNotFound
		}
		tenantID = records[0].TenantID

		needsGate := false
		for _, r := range records {
			if r.Status == StatusPending && newStatus == StatusCompleted {
				needsGate = true
				break
			}
		}
		if needsGate {
			if err := s.consumeConfirmation(ctx, token, newStatus, recordIDs); err != nil {
				return err
			}
		}

		res := tx.Model(&models.CommissionRecord{}).Where("id IN ?", recordIDs).Update("status", newStatus)
		if res.Error != nil {
			return &PersistenceError{Op: "bulk update status", Err: res.Error}
		}
		updated = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, tenantID)
	return updated, nil
}

// lockForUpdate takes a row lock on backends that support it. SQLite has no
// FOR UPDATE; its single-writer model covers the same race.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *Service) invalidate(ctx context.Context, tenantID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID)
	}
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, recordID int64) (*models.CommissionRecord, error) {
	var record models.CommissionRecord
	if err := s.db.WithContext(ctx).First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load commission", Err: err}
	}
	return &record, nil
}

// ListFilter mirrors the commission log view's filter tuple. Zero/nil fields
// are not applied.
type ListFilter struct {
	TenantID   int64
	SupplierID *int64
	Status     *string
	From       *time.Time
	To         *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int
	PageSize   int
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.CommissionRecord, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.PageSize
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := s.db.WithContext(ctx).Model(&models.CommissionRecord{}).Where("tenant_id = ?", filter.TenantID)
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_commission >= ?", filter.MinAmount.StringFixed(2))
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_commission <= ?", filter.MaxAmount.StringFixed(2))
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count commissions", Err: err}
	}

	var records []models.CommissionRecord
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list commissions", Err: err}
	}
	return records, totalCount, nil
}
