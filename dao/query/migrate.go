package query

import (
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
)

// Migrate creates or updates the schema for every entity. Order matters for
// the foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Section{},
		&model.StandardInvestigation{},
		&model.StandardSection{},
		&model.Investigation{},
		&model.Expertise{},
		&model.ExpertiseRemark{},
		&model.RemarkComment{},
		&model.IntroBlock{},
		&model.Message{},
		&model.Contact{},
		&model.File{},
	)
}
