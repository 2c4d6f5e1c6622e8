package internal

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/projectbureau/bureau-backend/internal/handler"
	"github.com/projectbureau/bureau-backend/internal/middleware"
	"github.com/projectbureau/bureau-backend/pkg/config"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

const apiPrefix = "/api"

type Backend struct {
	R *gin.Engine
}

func Register(conf *handler.RegisterConfig) *Backend {
	s := new(Backend)
	s.R = gin.Default()

	// Health check for the reverse proxy
	s.R.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	s.RegisterService(conf)

	return s
}

func (b *Backend) RegisterService(conf *handler.RegisterConfig) {
	// Enable CORS for the local frontend in debug mode
	if gin.Mode() == gin.DebugMode {
		origin := config.GetConfig().Frontend.Origin
		if origin != "" {
			corsConf := cors.DefaultConfig()
			corsConf.AllowOrigins = []string{origin}
			corsConf.AllowCredentials = true
			b.R.Use(cors.New(corsConf))
		}
	}

	// Uploaded files are served as-is under /uploads
	b.R.Static(uploads.PublicPrefix, conf.Uploads.Root)

	managers := registerManagers(conf)

	publicRouter := b.R.Group(apiPrefix)

	protectedRouter := b.R.Group(apiPrefix)
	protectedRouter.Use(middleware.AuthProtected(conf.DB, conf.TokenMgr))

	// Same prefix as the protected group; the extra middleware narrows it
	// to admins.
	adminRouter := b.R.Group(apiPrefix)
	adminRouter.Use(middleware.AuthProtected(conf.DB, conf.TokenMgr), middleware.AuthAdmin())

	for _, mgr := range managers {
		mgr.RegisterPublic(publicRouter.Group(mgr.GetName()))
		mgr.RegisterProtected(protectedRouter.Group(mgr.GetName()))
		mgr.RegisterAdmin(adminRouter.Group(mgr.GetName()))
	}
}
