package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
	RoleWorker   UserRole = "worker"
)

type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	Role          UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	LoyaltyPoints int       `json:"loyalty_points" gorm:"default:0"`
	BranchID      *uint     `json:"branch_id"`

	// Password reset flow: token mailed to the user, expiry enforced on use.
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
