package models

import "time"

// SubscriptionFrequency is the recurrence of a subscription
type SubscriptionFrequency string

const (
	FrequencyWeekly  SubscriptionFrequency = "weekly"
	FrequencyMonthly SubscriptionFrequency = "monthly"
)

// Subscription is a recurring order template. A materializer run turns each
// due active subscription into a concrete Order.
type Subscription struct {
	ID              uint                  `json:"id" gorm:"primaryKey"`
	CustomerID      uint                  `json:"customer_id" gorm:"not null"`
	Customer        User                  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Frequency       SubscriptionFrequency `json:"frequency" gorm:"not null"`
	DeliveryAddress string                `json:"delivery_address" gorm:"not null"`
	TimeSlot        string                `json:"time_slot"`
	IsActive        bool                  `json:"is_active" gorm:"default:true"`
	NextDelivery    time.Time             `json:"next_delivery"`
	Items           []SubscriptionItem    `json:"items,omitempty" gorm:"foreignKey:SubscriptionID"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type SubscriptionItem struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	SubscriptionID uint       `json:"subscription_id" gorm:"not null"`
	Size           BottleSize `json:"size" gorm:"not null"`
	Quantity       int        `json:"quantity" gorm:"not null"`
}
