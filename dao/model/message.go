package model

// Message is a section chat entry, text and/or file.
type Message struct {
	Base
	SectionID  uint    `gorm:"index;not null" json:"sectionId"`
	ProjectID  *uint   `gorm:"index" json:"projectId"`
	AuthorID   uint    `gorm:"not null" json:"authorId"`
	Author     *User   `json:"-"`
	Content    string  `gorm:"type:text;not null;default:''" json:"content"`
	IsCritical bool    `gorm:"not null;default:false" json:"isCritical"`
	FileName   *string `gorm:"type:varchar(256)" json:"fileName"`
	FilePath   *string `gorm:"type:varchar(256)" json:"filePath"`
}
