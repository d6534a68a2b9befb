package model

type ServiceType struct {
	ID                int64   `gorm:"primarykey" json:"id"`
	Name              string  `gorm:"not null" json:"name"`
	Description       string  `gorm:"type:text" json:"description,omitempty"`
	EstimatedDuration string  `gorm:"column:estimated_duration" json:"estimatedDuration,omitempty"`
	BasePrice         float64 `gorm:"column:base_price" json:"basePrice"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:ServiceTypeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ServiceType) TableName() string {
	return "service_types"
}
