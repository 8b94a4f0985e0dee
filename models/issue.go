package models

import "time"

type IssueStatus string

const (
	IssuePending       IssueStatus = "pending"
	IssueInvestigating IssueStatus = "investigating"
	IssueResolved      IssueStatus = "resolved"
	IssueRejected      IssueStatus = "rejected"
)

type IssueType string

const (
	IssueDelivery IssueType = "delivery"
	IssueQuality  IssueType = "quality"
	IssueBilling  IssueType = "billing"
	IssueOther    IssueType = "other"
)

// Issue is a customer-filed ticket linked to an order
type Issue struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	CustomerID  uint        `json:"customer_id" gorm:"not null"`
	OrderID     uint        `json:"order_id" gorm:"not null"`
	Type        IssueType   `json:"type" gorm:"not null"`
	Description string      `json:"description" gorm:"not null"`
	Status      IssueStatus `json:"status" gorm:"not null;default:'pending'"`
	Resolution  string      `json:"resolution"`
	ResolvedBy  *uint       `json:"resolved_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
