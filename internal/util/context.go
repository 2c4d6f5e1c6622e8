package util

import (
	"github.com/gin-gonic/gin"

	"github.com/projectbureau/bureau-backend/dao/model"
)

const (
	UserIDKey    = "x-user-id"
	UserEmailKey = "x-user-email"
	UserNameKey  = "x-user-name"
	UserRoleKey  = "x-user-role"
)

// SetIdentity stores the authenticated identity in the request context.
// The middleware fills it from the live user row, not from the token alone.
func SetIdentity(c *gin.Context, msg JWTMessage) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UserEmailKey, msg.Email)
	c.Set(UserNameKey, msg.Name)
	c.Set(UserRoleKey, msg.Role)
}

// GetIdentity returns the identity stored by the auth middleware.
func GetIdentity(c *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.UserID = c.GetUint(UserIDKey)
	msg.Email = c.GetString(UserEmailKey)
	msg.Name = c.GetString(UserNameKey)

	role, _ := c.Get(UserRoleKey)
	msg.Role, _ = role.(model.Role)
	return msg
}
