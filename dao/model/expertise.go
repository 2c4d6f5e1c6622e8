package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Expertise is one formal review stage of a project. Experts are kept as an
// embedded JSON list, not separate rows: they are never queried on their own.
type Expertise struct {
	Base
	ProjectID uint                         `gorm:"index;not null" json:"projectId"`
	Project   *Project                     `json:"-"`
	StageName *string                      `gorm:"type:varchar(256)" json:"stageName"`
	StartDate *string                      `gorm:"type:varchar(32)" json:"startDate"`
	EndDate   *string                      `gorm:"type:varchar(32)" json:"endDate"`
	Experts   datatypes.JSONSlice[Expert]  `gorm:"comment:Эксперты стадии" json:"experts"`
	Files     datatypes.JSONSlice[FileRef] `gorm:"comment:Файлы стадии" json:"files"`

	Remarks []ExpertiseRemark `gorm:"constraint:OnDelete:CASCADE" json:"remarks,omitempty"`
}

// Expert is an embedded reviewer record.
type Expert struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// ExpertiseRemark is a single reviewer-raised issue. It carries at most one
// official response (last write wins); discussion lives in Comments.
type ExpertiseRemark struct {
	Base
	ExpertiseID uint         `gorm:"index;not null" json:"expertiseId"`
	Expertise   *Expertise   `json:"-"`
	SectionID   *uint        `gorm:"index" json:"sectionId"`
	Section     *Section     `json:"section,omitempty"`
	SectionCode *string      `gorm:"type:varchar(32);comment:Шифр раздела свободным текстом" json:"sectionCode"`
	Number      *string      `gorm:"type:varchar(32)" json:"number"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	FileName    *string      `gorm:"type:varchar(256)" json:"fileName"`
	FilePath    *string      `gorm:"type:varchar(256)" json:"filePath"`
	Status      RemarkStatus `gorm:"type:varchar(32);not null;default:open" json:"status"`

	ResponseContent  *string    `gorm:"type:text" json:"responseContent"`
	ResponseFile     *string    `gorm:"type:varchar(256)" json:"responseFile"`
	ResponseFileName *string    `gorm:"type:varchar(256)" json:"responseFileName"`
	RespondedBy      *uint      `json:"respondedBy"`
	RespondedAt      *time.Time `json:"respondedAt"`

	Comments []RemarkComment `gorm:"foreignKey:RemarkID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

var (
	// ErrRemarkNotResponded is returned when a remark without an official
	// response is asked to close.
	ErrRemarkNotResponded = errors.New("remark has no response yet")
	// ErrRemarkClosed is returned on any attempt to move a closed remark;
	// closing is final.
	ErrRemarkClosed = errors.New("remark is closed")
)

// SetStatus enforces the remark workflow: closed is only reachable once a
// response has been recorded, and nothing leaves closed. Setting the
// current status again is a no-op.
func (r *ExpertiseRemark) SetStatus(next RemarkStatus) error {
	if r.Status == RemarkClosed {
		if next == RemarkClosed {
			return nil
		}
		return ErrRemarkClosed
	}
	if next == RemarkClosed && r.Status == RemarkOpen && r.RespondedAt == nil {
		return ErrRemarkNotResponded
	}
	r.Status = next
	return nil
}

// Respond records the official response. Repeated calls overwrite the
// previous content, file and timestamp; nil arguments keep the stored value.
func (r *ExpertiseRemark) Respond(content, filePath, fileName *string, userID uint, now time.Time) {
	if content != nil {
		r.ResponseContent = content
	}
	if filePath != nil {
		r.ResponseFile = filePath
		r.ResponseFileName = fileName
	}
	r.RespondedBy = &userID
	t := now
	r.RespondedAt = &t
	if r.Status == RemarkOpen {
		r.Status = RemarkResponded
	}
}

// RemarkComment is an append-only discussion entry under a remark.
type RemarkComment struct {
	Base
	RemarkID uint    `gorm:"index;not null" json:"remarkId"`
	AuthorID uint    `gorm:"not null" json:"authorId"`
	Author   *User   `json:"-"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	FileName *string `gorm:"type:varchar(256)" json:"fileName"`
	FilePath *string `gorm:"type:varchar(256)" json:"filePath"`
}
