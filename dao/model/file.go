package model

// File records a generic upload. The MIME type is a display hint from the
// client, never a security decision.
type File struct {
	Base
	Name         string `gorm:"type:varchar(256);not null;comment:Имя файла в хранилище" json:"name"`
	OriginalName string `gorm:"type:varchar(256);not null" json:"originalName"`
	Path         string `gorm:"type:varchar(256);not null" json:"path"`
	MimeType     string `gorm:"type:varchar(128)" json:"mimeType"`
	Size         int64  `gorm:"not null;default:0" json:"size"`
	ProjectID    *uint  `gorm:"index" json:"projectId"`
	SectionID    *uint  `gorm:"index" json:"sectionId"`
}
