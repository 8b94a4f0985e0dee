package models

import "time"

// Branch is a physical depot orders are fulfilled from
type Branch struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricingRule maps a delivery zone to its delivery charge
type PricingRule struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Zone           string    `json:"zone" gorm:"not null"`
	MaxDistanceKm  float64   `json:"max_distance_km"`
	DeliveryCharge float64   `json:"delivery_charge" gorm:"not null"`
	BranchID       *uint     `json:"branch_id"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BottleReturnType distinguishes deposit refunds from exchanges
type BottleReturnType string

const (
	ReturnDeposit  BottleReturnType = "deposit"
	ReturnExchange BottleReturnType = "exchange"
)

// BottleReturn records empty bottles handed back by a customer
type BottleReturn struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	CustomerID uint             `json:"customer_id" gorm:"not null"`
	Customer   User             `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OrderID    *uint            `json:"order_id"`
	Size       BottleSize       `json:"size" gorm:"not null"`
	Quantity   int              `json:"quantity" gorm:"not null"`
	Type       BottleReturnType `json:"type" gorm:"not null;default:'exchange'"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Setting is a persisted key/value configuration record. The ordering-paused
// flag lives here so it survives restarts and is shared across instances.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingOrderingPaused holds "true" while new orders are not accepted
const SettingOrderingPaused = "ordering_paused"
