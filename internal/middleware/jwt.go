package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
)

// CookieName is the browser delivery vehicle for the credential; non-browser
// clients send the same token in the Authorization header.
const CookieName = "auth_token"

// AuthProtected verifies the credential and re-fetches the user row, so that
// a role change or archival after issuance takes effect immediately. The
// identity placed in the context always carries the live role.
func AuthProtected(db *gorm.DB, tokenMgr *util.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			resputil.UnauthorizedError(c)
			c.Abort()
			return
		}

		token, err := tokenMgr.CheckToken(raw)
		if err != nil {
			resputil.UnauthorizedError(c)
			c.Abort()
			return
		}

		var user model.User
		if err := db.First(&user, token.UserID).Error; err != nil {
			resputil.UnauthorizedError(c)
			c.Abort()
			return
		}
		if user.IsArchived {
			resputil.HTTPError(c, http.StatusForbidden, "Пользователь архивирован")
			c.Abort()
			return
		}

		util.SetIdentity(c, util.JWTMessage{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Role:   user.Role,
		})
		c.Next()
	}
}

// AuthAdmin must run after AuthProtected.
func AuthAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		who := util.GetIdentity(c)
		if who.Role != model.RoleAdmin {
			resputil.ForbiddenError(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader != "" {
		t := strings.Split(authHeader, " ")
		if len(t) == 2 && t[0] == "Bearer" {
			return t[1]
		}
		return ""
	}
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie
}
