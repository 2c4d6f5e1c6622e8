package util

import (
	"github.com/projectbureau/bureau-backend/dao/model"
)

// Доступ проверяется по уже загруженной цепочке владения:
// ресурс -> раздел -> проект -> ГИП. Админ проходит всегда.

func IsAdmin(who JWTMessage) bool {
	return who.Role == model.RoleAdmin
}

// IsGip reports whether the requester owns the project.
func IsGip(who JWTMessage, project *model.Project) bool {
	return project != nil && project.GipID != nil && *project.GipID == who.UserID
}

// IsAssignee reports whether the requester is the section's assignee.
func IsAssignee(who JWTMessage, section *model.Section) bool {
	return section != nil && section.AssigneeID != nil && *section.AssigneeID == who.UserID
}

// CanManageProject gates project-level mutations: child creation, edits,
// deletion of sections, investigations, expertises, remarks and contacts.
func CanManageProject(who JWTMessage, project *model.Project) bool {
	return IsAdmin(who) || IsGip(who, project)
}

// CanEditSection additionally admits the section's assignee, for the
// sub-resources the assignee works on: section edits, intro blocks,
// deliverable uploads.
func CanEditSection(who JWTMessage, section *model.Section, project *model.Project) bool {
	return IsAdmin(who) || IsGip(who, project) || IsAssignee(who, section)
}
