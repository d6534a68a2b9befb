package model

import (
	"time"
)

// Announcement is a storefront banner. At most one announcement is active at
// any time; the write path enforces this, not the schema.
type Announcement struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	// Pointer so an explicit false survives Create: with a plain bool, gorm
	// drops the zero value and the column default flips it back to true.
	Active    *bool     `gorm:"default:true;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Announcement) TableName() string {
	return "announcements"
}
