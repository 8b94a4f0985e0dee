package models

import "time"

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records the settlement of one order. COD payments stay pending
// until the order is delivered; other methods complete immediately.
type Payment struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	OrderID       uint          `json:"order_id" gorm:"not null"`
	Order         Order         `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerID    uint          `json:"customer_id" gorm:"not null"`
	Method        PaymentMethod `json:"method" gorm:"not null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	Status        PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	TransactionID string        `json:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
