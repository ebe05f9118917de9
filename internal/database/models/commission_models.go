package models

import "time"

// CommissionSettings is the singleton-per-tenant pair of platform rates.
// Changing it never touches existing commission records; rates are
// snapshotted onto each record at creation time.
type CommissionSettings struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	TenantID     int64      `gorm:"uniqueIndex;not null"`
	SupplierRate string     `gorm:"type:decimal(5,2);not null"`
	RoasterRate  string     `gorm:"type:decimal(5,2);not null"`
	UpdatedBy    int64      `gorm:"not null"`
	CreatedAt    *time.Time `gorm:"autoCreateTime"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime"`
}

type CommissionRecord struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	TenantID   int64 `gorm:"index;not null"`
	OrderID    int64 `gorm:"uniqueIndex;not null"`
	SupplierID int64 `gorm:"index;not null"`
	RoasterID  int64 `gorm:"index;not null"`

	// Amounts derived once at creation. SupplierRate/RoasterRate are the
	// snapshot of CommissionSettings as of that moment.
	OrderTotal         string `gorm:"type:decimal(18,2);not null"`
	SupplierRate       string `gorm:"type:decimal(5,2);not null"`
	RoasterRate        string `gorm:"type:decimal(5,2);not null"`
	SupplierCommission string `gorm:"type:decimal(18,2);not null"`
	RoasterCommission  string `gorm:"type:decimal(18,2);not null"`
	TotalCommission    string `gorm:"type:decimal(18,2);not null"`

	Status    string     `gorm:"index;not null"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

// Contract is the escrow-style order companion entity. Same transition shape
// as commission records, without the confirmation gate.
type Contract struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TenantID   int64  `gorm:"index;not null"`
	OrderID    int64  `gorm:"uniqueIndex;not null"`
	SupplierID int64  `gorm:"index;not null"`
	RoasterID  int64  `gorm:"index;not null"`
	Amount     string `gorm:"type:decimal(18,2);not null"`
	Status     string `gorm:"index;not null"`
	FundedAt   *time.Time
	ClosedAt   *time.Time
	CreatedAt  *time.Time `gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime"`
}
