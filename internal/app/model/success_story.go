package model

import (
	"time"
)

type SuccessStory struct {
	ID          int64     `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (SuccessStory) TableName() string {
	return "success_stories"
}
