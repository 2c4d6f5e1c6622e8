package model

// StandardInvestigation is an admin-curated catalog entry used to pre-fill
// project investigations.
type StandardInvestigation struct {
	Base
	Name        string  `gorm:"uniqueIndex;type:varchar(256);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	SortOrder   int     `gorm:"not null;default:0" json:"sortOrder"`
	IsActive    bool    `gorm:"not null;default:true" json:"isActive"`
}

// StandardSection is the catalog of common design section codes.
type StandardSection struct {
	Base
	Code      string `gorm:"uniqueIndex;type:varchar(32);not null" json:"code"`
	Name      string `gorm:"type:varchar(256);not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0" json:"sortOrder"`
	IsActive  bool   `gorm:"not null;default:true" json:"isActive"`
}
