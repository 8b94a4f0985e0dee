package models

import "time"

// Rating is customer feedback for one delivered order, 1–5 scale
type Rating struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	OrderID      uint      `json:"order_id" gorm:"uniqueIndex;not null"`
	CustomerID   uint      `json:"customer_id" gorm:"not null"`
	WorkerID     *uint     `json:"worker_id"`
	Overall      int       `json:"overall" gorm:"not null"`
	DeliveryTime int       `json:"delivery_time"`
	WaterQuality int       `json:"water_quality"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
