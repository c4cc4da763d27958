package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:100;unique;not null" json:"email"`
	Role     UserRole  `gorm:"type:varchar(20);default:'student'" json:"role"`
	Language string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar   string    `gorm:"size:255" json:"avatar"`
	Disabled bool      `gorm:"default:false" json:"disabled"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
