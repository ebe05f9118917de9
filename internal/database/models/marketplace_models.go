package models

import "time"

// Marketplace roles. Stored as plain strings on the user row.
const (
	RoleSupplier    = "supplier"
	RoleRoaster     = "roaster"
	RoleCafe        = "cafe"
	RoleFarm        = "farm"
	RoleMaintenance = "maintenance"
	RoleAdmin       = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSupplier, RoleRoaster, RoleCafe, RoleFarm, RoleMaintenance, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	TenantID  int64  `gorm:"index;not null"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null" json:"-"`
	Firstname string `gorm:"not null"`
	Lastname  string `gorm:"not null"`
	Role      string `gorm:"index;not null"`
	IsActive  bool   `gorm:"default:true"`
	LastLogin *time.Time
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

// Order statuses relevant to commission creation. The marketplace flow that
// moves an order to delivered/paid lives outside this service; the order row
// exists so commission records reference real data.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusDelivered = "delivered"
	OrderStatusPaid      = "paid"
)

type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	TenantID    int64  `gorm:"index;not null"`
	SupplierID  int64  `gorm:"index;not null"`
	RoasterID   int64  `gorm:"index;not null"`
	OrderTotal  string `gorm:"type:decimal(18,2);not null"`
	Status      string `gorm:"index;not null"`
	DeliveredAt *time.Time
	CreatedAt   *time.Time `gorm:"autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime"`
}
