package model

import (
	"time"

	"gorm.io/gorm"
)

// Base replaces gorm.Model so that entities marshal with the camelCase
// field names the frontend expects.
type Base struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
