package model

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
)

// User carries a caller-supplied or generated string primary key; customer
// accounts reference it from appointments and parts (as creator).
// Password holds a bcrypt hash, never plain text. The admin API scrubs it
// from every response (see registry hidden fields).
type User struct {
	ID           string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"not null" json:"password,omitempty"`
	Role         UserRole  `gorm:"type:varchar(20);default:CUSTOMER;not null" json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	ProfileImage string    `gorm:"column:profile_image" json:"profileImage,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:UserID" json:"-"`
	PartsAdded   []Part        `gorm:"foreignKey:AddedBy" json:"-"`
}

func (User) TableName() string {
	return "users"
}
