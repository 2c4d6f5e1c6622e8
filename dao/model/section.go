package model

import (
	"time"

	"gorm.io/datatypes"
)

// Section is one design discipline within a project (АР, КР, ОВ, ...).
// The code is unique within its project.
type Section struct {
	Base
	ProjectID       uint                         `gorm:"uniqueIndex:uniq_section_code;not null" json:"projectId"`
	Project         *Project                     `json:"-"`
	Code            string                       `gorm:"uniqueIndex:uniq_section_code;type:varchar(32);not null;comment:Шифр раздела" json:"code"`
	Description     string                       `gorm:"type:varchar(256);not null;default:''" json:"description"`
	Status          WorkStatus                   `gorm:"type:varchar(32);not null;default:not_started" json:"status"`
	ExpertiseStatus *string                      `gorm:"type:varchar(32);comment:Статус прохождения экспертизы" json:"expertiseStatus"`
	AssigneeID      *uint                        `gorm:"index;comment:Исполнитель раздела" json:"assigneeId"`
	Assignee        *User                        `json:"-"`
	CoAssignees     datatypes.JSONSlice[uint]    `gorm:"comment:Соисполнители" json:"coAssignees"`
	StartedAt       *time.Time                   `json:"startedAt"`
	CompletedAt     *time.Time                   `json:"completedAt"`
	Files           datatypes.JSONSlice[FileRef] `gorm:"comment:Прикреплённые файлы" json:"files"`

	CompletedFile     *string `gorm:"type:varchar(256);comment:Готовый файл раздела" json:"completedFile"`
	CompletedFileName *string `gorm:"type:varchar(256)" json:"completedFileName"`

	IntroBlocks []IntroBlock      `gorm:"constraint:OnDelete:CASCADE" json:"introBlocks,omitempty"`
	Messages    []Message         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Remarks     []ExpertiseRemark `gorm:"constraint:OnDelete:SET NULL" json:"remarks,omitempty"`
}

// FileRef is an embedded reference to an uploaded file.
type FileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SectionRef is the short shape embedded in remark responses.
type SectionRef struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (s *Section) Ref() *SectionRef {
	if s == nil {
		return nil
	}
	return &SectionRef{ID: s.ID, Code: s.Code, Description: s.Description}
}

// ApplyStatus moves the section to the given status and stamps the
// transition timestamps. StartedAt is set once and never overwritten;
// CompletedAt is refreshed on every entry into completed. Backward
// transitions keep both stamps as an audit trail.
func (s *Section) ApplyStatus(status WorkStatus, now time.Time) {
	s.Status = status
	if status == WorkInProgress && s.StartedAt == nil {
		t := now
		s.StartedAt = &t
	}
	if status == WorkCompleted {
		t := now
		s.CompletedAt = &t
	}
}
