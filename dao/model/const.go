// Статусы хранятся строками, как их отдаёт и принимает фронтенд.
// Справочник значений единый для всей системы, поэтому здесь, а не в handler.
package model

// User role in the platform
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleGip      Role = "gip"      // chief project engineer, owns projects
	RoleEmployee Role = "employee" // staff engineer, works on assigned sections
)

// Project status
type ProjectStatus string

const (
	ProjectInWork    ProjectStatus = "in_work"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Expertise requirement of a project
type ExpertiseKind string

const (
	ExpertiseNone     ExpertiseKind = "none"
	ExpertiseState    ExpertiseKind = "state"
	ExpertiseNonState ExpertiseKind = "non_state"
)

// Section and investigation status
type WorkStatus string

const (
	WorkNotStarted WorkStatus = "not_started"
	WorkInProgress WorkStatus = "in_progress"
	WorkCompleted  WorkStatus = "completed"
)

// Expertise remark status
type RemarkStatus string

const (
	RemarkOpen      RemarkStatus = "open"
	RemarkResponded RemarkStatus = "responded"
	RemarkClosed    RemarkStatus = "closed"
)

// Intro block type
type IntroBlockType string

const (
	IntroBlockText IntroBlockType = "text"
	IntroBlockFile IntroBlockType = "file"
)
