package auth

import "time"

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	TenantID     string    `gorm:"type:text;index;not null"`
	Role         string    `gorm:"type:text;not null;default:'agent'"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}
