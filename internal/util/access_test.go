package util

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/projectbureau/bureau-backend/dao/model"
)

func uintPtr(v uint) *uint { return &v }

func TestCanManageProject(t *testing.T) {
	project := &model.Project{GipID: uintPtr(2)}

	assert.True(t, CanManageProject(JWTMessage{UserID: 1, Role: model.RoleAdmin}, project))
	assert.True(t, CanManageProject(JWTMessage{UserID: 2, Role: model.RoleGip}, project))
	assert.False(t, CanManageProject(JWTMessage{UserID: 3, Role: model.RoleGip}, project),
		"a GIP of another project is not an owner")
	assert.False(t, CanManageProject(JWTMessage{UserID: 2, Role: model.RoleGip}, nil))
}

func TestCanEditSection(t *testing.T) {
	project := &model.Project{GipID: uintPtr(2)}
	section := &model.Section{AssigneeID: uintPtr(5)}

	assert.True(t, CanEditSection(JWTMessage{UserID: 5, Role: model.RoleEmployee}, section, project))
	assert.True(t, CanEditSection(JWTMessage{UserID: 2, Role: model.RoleGip}, section, project))
	assert.False(t, CanEditSection(JWTMessage{UserID: 6, Role: model.RoleEmployee}, section, project))
	assert.False(t, CanEditSection(JWTMessage{UserID: 6, Role: model.RoleEmployee}, nil, nil))
}
