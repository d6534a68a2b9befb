package model

type Category struct {
	ID          int64  `gorm:"primarykey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Parts []Part `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
