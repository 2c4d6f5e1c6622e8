package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

// RegisterConfig carries the shared dependencies into every manager.
type RegisterConfig struct {
	DB       *gorm.DB
	TokenMgr *util.TokenManager
	Uploads  *uploads.Store
}

// Manager owns the routes of one resource. GetName is the route group
// prefix under /api.
type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// Registers collects the manager constructors of the package.
var Registers []func(*RegisterConfig) Manager
