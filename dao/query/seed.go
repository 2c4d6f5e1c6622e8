package query

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

// Seed fills an empty database with the default admin account and the
// standard catalogs. It is idempotent and safe to run on every start.
func Seed(db *gorm.DB) error {
	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedStandardInvestigations(db); err != nil {
		return err
	}
	return seedStandardSections(db)
}

func seedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type seedUser struct {
		email, password, name, position string
		role                            model.Role
		color                           string
		competencies                    []string
	}
	users := []seedUser{
		{"admin@test.com", "admin123", "Администратор", "Системный администратор", model.RoleAdmin, "#3B82F6", nil},
		{"gip@test.com", "gip123", "Иванов Иван Иванович", "Главный инженер проекта", model.RoleGip, "#10B981", nil},
		{"emp@test.com", "emp123", "Петров Петр Петрович", "Инженер-проектировщик", model.RoleEmployee, "#F59E0B", []string{"АР", "КР", "ОВ"}},
	}

	for _, su := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		position := su.position
		color := su.color
		u := model.User{
			Email:        su.email,
			Password:     string(hash),
			Name:         su.name,
			Position:     &position,
			Role:         su.role,
			AvatarColor:  &color,
			Competencies: datatypes.NewJSONSlice(su.competencies),
		}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		logutils.Log.Infof("seeded user %s (%s)", u.Email, u.Role)
	}
	return nil
}

func seedStandardInvestigations(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.StandardInvestigation{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := []string{
		"Инженерно-геодезические изыскания",
		"Инженерно-геологические изыскания",
		"Инженерно-гидрометеорологические изыскания",
		"Инженерно-экологические изыскания",
		"Обследование строительных конструкций",
		"Археологические изыскания",
	}
	for i, name := range names {
		inv := model.StandardInvestigation{Name: name, SortOrder: i + 1, IsActive: true}
		if err := db.Create(&inv).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedStandardSections(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.StandardSection{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sections := []model.StandardSection{
		{Code: "ГП", Name: "Генеральный план", SortOrder: 1, IsActive: true},
		{Code: "АР", Name: "Архитектурные решения", SortOrder: 2, IsActive: true},
		{Code: "КР", Name: "Конструктивные решения", SortOrder: 3, IsActive: true},
		{Code: "ОВ", Name: "Отопление, вентиляция и кондиционирование", SortOrder: 4, IsActive: true},
		{Code: "ВК", Name: "Водоснабжение и канализация", SortOrder: 5, IsActive: true},
		{Code: "ЭОМ", Name: "Электроснабжение и электрооборудование", SortOrder: 6, IsActive: true},
	}
	for i := range sections {
		if err := db.Create(&sections[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
