package model

import (
	"time"
)

// Part is a spare-parts inventory item. Deleting its category cascades to the
// part; deleting the creator user nulls AddedBy.
type Part struct {
	ID          int64     `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Stock       int       `gorm:"default:0;not null" json:"stock"`
	Image       string    `json:"image,omitempty"`
	CategoryID  int64     `gorm:"column:category_id;not null" json:"categoryId"`
	AddedBy     *string   `gorm:"column:added_by;type:varchar(64)" json:"addedBy,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`

	// Relationships
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	AddedByUser *User     `gorm:"foreignKey:AddedBy;constraint:OnDelete:SET NULL" json:"-"`
}

func (Part) TableName() string {
	return "parts"
}
