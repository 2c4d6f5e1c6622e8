package model

// IntroBlock is a piece of input material, either a text note or an
// uploaded file. Project-level blocks have no section; section blocks keep
// ProjectID denormalized for project-tree listings.
type IntroBlock struct {
	Base
	SectionID *uint          `gorm:"index" json:"sectionId"`
	ProjectID uint           `gorm:"index;not null" json:"projectId"`
	Type      IntroBlockType `gorm:"type:varchar(16);not null;default:text" json:"type"`
	Title     string         `gorm:"type:varchar(256);not null" json:"title"`
	Content   *string        `gorm:"type:text" json:"content"`
	FileName  *string        `gorm:"type:varchar(256)" json:"fileName"`
	FilePath  *string        `gorm:"type:varchar(256)" json:"filePath"`
	SortOrder int            `gorm:"not null;default:0" json:"sortOrder"`
}
