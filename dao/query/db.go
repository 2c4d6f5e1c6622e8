package query

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/pkg/config"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

var (
	once     sync.Once
	instance *gorm.DB
)

// GetDB returns the singleton database connection.
func GetDB() *gorm.DB {
	once.Do(func() {
		pg := config.GetConfig().Postgres

		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, pg.SSLMode, pg.TimeZone)
		var err error
		instance, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			panic(err)
		}

		sqlDB, err := instance.DB()
		if err != nil {
			panic(err)
		}
		// A bureau is a few dozen concurrent users at most; a small pool
		// keeps connection pressure off a shared postgres instance.
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		logutils.Log.Info("postgres connected: ", pg.Host, ":", pg.Port, "/", pg.DBName)
	})
	return instance
}
