package models

import "time"

// OrderStatus represents all possible states of a water delivery order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAssigned  OrderStatus = "assigned"
	StatusInTransit OrderStatus = "in-transit"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// BottleSize is one of the three fixed bottle tiers
type BottleSize string

const (
	Bottle5L  BottleSize = "5L"
	Bottle10L BottleSize = "10L"
	Bottle20L BottleSize = "20L"
)

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	CustomerID      uint        `json:"customer_id" gorm:"not null"`
	Customer        User        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	WorkerID        *uint       `json:"worker_id"`
	Worker          *User       `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	BranchID        *uint       `json:"branch_id"`
	Status          OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	DeliveryAddress string      `json:"delivery_address" gorm:"not null"`
	TimeSlot        string      `json:"time_slot"` // e.g. "morning", "evening"
	Notes           string      `json:"notes"`

	// Money fields are computed once at placement and never recomputed;
	// every downstream consumer reads the stored values.
	Subtotal       float64 `json:"subtotal"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Discount       float64 `json:"discount"`
	TotalPrice     float64 `json:"total_price"`
	PromoCode      string  `json:"promo_code"`
	PointsRedeemed int     `json:"points_redeemed"`

	CancellationReason string     `json:"cancellation_reason"`
	DeliveredAt        *time.Time `json:"delivered_at"`

	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	OrderID  uint       `json:"order_id" gorm:"not null"`
	Size     BottleSize `json:"size" gorm:"not null"`
	Quantity int        `json:"quantity" gorm:"not null"`
	Price    float64    `json:"price" gorm:"not null"` // snapshot unit price at time of order
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
