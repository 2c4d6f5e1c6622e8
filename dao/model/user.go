package model

import (
	"gorm.io/datatypes"
)

// User is the basic entity of the system
type User struct {
	Base
	Email         string                      `gorm:"uniqueIndex;type:varchar(128);not null;comment:Email (логин)" json:"email"`
	Password      string                      `gorm:"type:varchar(128);not null;comment:Хеш пароля (bcrypt)" json:"-"`
	Name          string                      `gorm:"type:varchar(128);not null;comment:ФИО" json:"name"`
	Position      *string                     `gorm:"type:varchar(128);comment:Должность" json:"position"`
	Phone         *string                     `gorm:"type:varchar(32)" json:"phone"`
	Avatar        *string                     `gorm:"type:varchar(256)" json:"avatar"`
	AvatarColor   *string                     `gorm:"type:varchar(16)" json:"avatarColor"`
	Role          Role                        `gorm:"type:varchar(32);not null;comment:Роль (admin, gip, employee)" json:"role"`
	Competencies  datatypes.JSONSlice[string] `gorm:"comment:Коды разделов, которые ведёт сотрудник" json:"competencies"`
	IsArchived    bool                        `gorm:"not null;default:false;comment:Архивирован (не может входить)" json:"isArchived"`
	ArchiveReason *string                     `gorm:"type:varchar(256)" json:"archiveReason"`
}

// UserRef is the short user shape embedded in other resources.
type UserRef struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Position    *string `json:"position,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	AvatarColor *string `json:"avatarColor,omitempty"`
}

// Ref returns the embeddable short shape.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Position:    u.Position,
		Avatar:      u.Avatar,
		AvatarColor: u.AvatarColor,
	}
}
