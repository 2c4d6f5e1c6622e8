package model

// Contact is a free-text person card attached to a project.
type Contact struct {
	Base
	ProjectID uint    `gorm:"index;not null" json:"projectId"`
	Name      string  `gorm:"type:varchar(128);not null" json:"name"`
	Position  *string `gorm:"type:varchar(128)" json:"position"`
	Company   *string `gorm:"type:varchar(256)" json:"company"`
	Phone     *string `gorm:"type:varchar(32)" json:"phone"`
	Email     *string `gorm:"type:varchar(128)" json:"email"`
	Notes     *string `gorm:"type:text" json:"notes"`
}
