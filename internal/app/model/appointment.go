package model

import (
	"time"
)

type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "PENDING"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the appointment status values.
func ValidStatus(s string) bool {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a service booking. Date is a calendar date (YYYY-MM-DD) and
// Time a time-of-day (HH:MM); both are stored as text, the admin UI treats
// them as opaque.
type Appointment struct {
	ID            int64             `gorm:"primarykey" json:"id"`
	UserID        string            `gorm:"column:user_id;type:varchar(64);not null" json:"userId"`
	ServiceTypeID int64             `gorm:"column:service_type_id;not null" json:"serviceTypeId"`
	Date          string            `gorm:"not null" json:"date"`
	Time          string            `gorm:"not null" json:"time"`
	Status        AppointmentStatus `gorm:"type:varchar(20);default:PENDING;not null" json:"status"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"createdAt"`

	// Relationships
	User        *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ServiceType *ServiceType `gorm:"foreignKey:ServiceTypeID;constraint:OnDelete:CASCADE" json:"serviceType,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}
