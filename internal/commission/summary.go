package commission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"brewhub-system/internal/database/models"
)

const (
	summaryCachePrefix = "commission_summary:"
	summaryCacheTTL    = 2 * time.Hour
)

// Summary is the dashboard aggregate over a tenant's commission records.
type Summary struct {
	TenantID        int64  `json:"tenant_id"`
	RecordCount     int64  `json:"record_count"`
	TotalCommission string `json:"total_commission"`
	PendingAmount   string `json:"pending_amount"`
	CompletedAmount string `json:"completed_amount"`
}

// SummaryService computes tenant aggregates with a redis read-through cache.
// Mutations in the lifecycle invalidate the cached entry.
type SummaryService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSummaryService(db *gorm.DB, redisClient *redis.Client) *SummaryService {
	return &SummaryService{db: db, redis: redisClient}
}

func summaryCacheKey(tenantID int64) string {
	return fmt.Sprintf("%s%d", summaryCachePrefix, tenantID)
}

func (s *SummaryService) Invalidate(ctx context.Context, tenantID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCacheKey(tenantID)).Err(); err != nil {
		log.Printf("commission: summary cache invalidation failed for tenant %d: %v", tenantID, err)
	}
}

func (s *SummaryService) Get(ctx context.Context, tenantID int64) (*Summary, error) {
	cacheKey := summaryCacheKey(tenantID)
	if s.redis != nil {
		val, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached Summary
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("commission: redis error on summary read, falling back to DB: %v", err)
		}
	}

	var agg struct {
		RecordCount     int64
		TotalCommission string
		PendingAmount   string
		CompletedAmount string
	}
	err := s.db.WithContext(ctx).Model(&models.CommissionRecord{}).
		Select("COUNT(*) as record_count, "+
			"COALESCE(SUM(total_commission), 0) as total_commission, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN total_commission ELSE 0 END), 0) as pending_amount, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN total_commission ELSE 0 END), 0) as completed_amount",
			StatusPending, StatusCompleted).
		Where("tenant_id = ?", tenantID).
		Scan(&agg).Error
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate commissions", Err: err}
	}

	summary := &Summary{
		TenantID:        tenantID,
		RecordCount:     agg.RecordCount,
		TotalCommission: fixed(agg.TotalCommission),
		PendingAmount:   fixed(agg.PendingAmount),
		CompletedAmount: fixed(agg.CompletedAmount),
	}

	if s.redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, summaryCacheTTL).Err(); err != nil {
				log.Printf("commission: failed to cache summary for tenant %d: %v", tenantID, err)
			}
		}
	}

	return summary, nil
}

func fixed(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
