package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/projectbureau/bureau-backend/dao/query"
	"github.com/projectbureau/bureau-backend/internal"
	"github.com/projectbureau/bureau-backend/internal/handler"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/config"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

// @title						Bureau API
// @version					1.0.0
// @description				API сервер системы управления проектами проектного бюро.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Получите TOKEN через /api/auth/login и передавайте 'Bearer ${TOKEN}'
func main() {
	if gin.Mode() == gin.DebugMode {
		// .env is optional outside of local runs
		if err := godotenv.Load(); err != nil {
			logutils.Log.Info("no .env file loaded: ", err)
		}
	}

	conf := config.GetConfig()

	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		logutils.Log.Fatal("migrate: ", err)
	}
	if err := query.Seed(db); err != nil {
		logutils.Log.Fatal("seed: ", err)
	}

	backend := internal.Register(&handler.RegisterConfig{
		DB:       db,
		TokenMgr: util.GetTokenMgr(),
		Uploads:  uploads.NewStore(conf.Uploads.Dir),
	})

	logutils.Log.Info("listening on ", conf.ServerAddr)
	if err := backend.R.Run(conf.ServerAddr); err != nil {
		logutils.Log.Fatal("server: ", err)
	}
}
