package model

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// Project is owned by at most one GIP user at a time. Deleting a project
// cascades to every child entity.
type Project struct {
	Base
	Name            string        `gorm:"type:varchar(256);not null;comment:Название проекта" json:"name"`
	Code            *string       `gorm:"type:varchar(64);comment:Шифр проекта" json:"code"`
	Address         *string       `gorm:"type:varchar(256)" json:"address"`
	Description     *string       `gorm:"type:text" json:"description"`
	Type            *string       `gorm:"type:varchar(64)" json:"type"`
	Deadline        *string       `gorm:"type:varchar(32);comment:Срок сдачи (ISO дата)" json:"deadline"`
	CustomerContact *string       `gorm:"type:varchar(128)" json:"customerContact"`
	CustomerPhone   *string       `gorm:"type:varchar(32)" json:"customerPhone"`
	Status          ProjectStatus `gorm:"type:varchar(32);not null;default:in_work" json:"status"`
	Expertise       ExpertiseKind `gorm:"type:varchar(32);not null;default:none;comment:Требуется ли экспертиза" json:"expertise"`
	GipID           *uint         `gorm:"index;comment:ГИП проекта" json:"gipId"`
	Gip             *User         `json:"-"`

	ArchivedAt             *time.Time `json:"archivedAt"`
	ArchiveReason          *string    `gorm:"type:varchar(256)" json:"archiveReason"`
	PositiveConclusionFile *string    `gorm:"type:varchar(256)" json:"positiveConclusionFile"`
	PositiveConclusionName *string    `gorm:"type:varchar(256)" json:"positiveConclusionName"`

	Sections       []Section       `gorm:"constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	Investigations []Investigation `gorm:"constraint:OnDelete:CASCADE" json:"investigations,omitempty"`
	Expertises     []Expertise     `gorm:"constraint:OnDelete:CASCADE" json:"expertises,omitempty"`
	Contacts       []Contact       `gorm:"constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	IntroBlocks    []IntroBlock    `gorm:"constraint:OnDelete:CASCADE" json:"introBlocks,omitempty"`
}

// Progress returns the completion percentage of a section set,
// round-half-up, 0 for an empty set.
func Progress(sections []Section) int {
	completed := lo.CountBy(sections, func(s Section) bool {
		return s.Status == WorkCompleted
	})
	return ProgressOf(completed, len(sections))
}

// ProgressOf is the same percentage over raw counts, for aggregate queries
// that never load section rows.
func ProgressOf(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
