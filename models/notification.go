package models

import "time"

// NotificationType tags what a notification is about
type NotificationType string

const (
	NotifyOrderCreated   NotificationType = "orderCreated"
	NotifyOrderAssigned  NotificationType = "orderAssigned"
	NotifyNewAssignment  NotificationType = "newOrderAssigned"
	NotifyStatusUpdated  NotificationType = "orderStatusUpdated"
	NotifyOrderCancelled NotificationType = "orderCancelled"
	NotifySystem         NotificationType = "system"
)

type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null"`
	Type      NotificationType `json:"type" gorm:"not null"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message" gorm:"not null"`
	Read      bool             `json:"read" gorm:"default:false"`
	OrderID   *uint            `json:"order_id"`
	CreatedAt time.Time        `json:"created_at"`
}
