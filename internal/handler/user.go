package handler

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name string
	db   *gorm.DB
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name: "users",
		db:   conf.DB,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/:id", mgr.GetUser)
	g.PUT("/:id", mgr.UpdateUser) // сам себя или админ
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListUsers)
	g.POST("", mgr.CreateUser)
	g.DELETE("/:id", mgr.DeleteUser)
}

// Цвета для аватаров новых пользователей, как в исходном продукте.
var avatarColors = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899", "#06B6D4"}

type CreateUserReq struct {
	Email        string     `json:"email" binding:"required"`
	Password     string     `json:"password" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	Position     *string    `json:"position"`
	Phone        *string    `json:"phone"`
	Role         model.Role `json:"role"`
	Competencies []string   `json:"competencies"`
}

// UpdateUserReq is a typed patch: nil means unchanged.
type UpdateUserReq struct {
	Name        *string `json:"name"`
	Position    *string `json:"position"`
	Phone       *string `json:"phone"`
	Avatar      *string `json:"avatar"`
	AvatarColor *string `json:"avatarColor"`
	Password    *string `json:"password"`

	// Admin-only fields
	Role          *model.Role `json:"role"`
	Competencies  *[]string   `json:"competencies"`
	IsArchived    *bool       `json:"isArchived"`
	ArchiveReason *string     `json:"archiveReason"`
}

// ListUsers godoc
// @Summary Список всех пользователей
// @Tags User
// @Produce json
// @Security Bearer
// @Router /api/users [get]
func (mgr *UserMgr) ListUsers(c *gin.Context) {
	var users []model.User
	if err := mgr.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logutils.Log.Error("list users: ", err)
		resputil.Error(c, "Ошибка получения пользователей")
		return
	}
	resputil.Success(c, gin.H{"users": users})
}

func (mgr *UserMgr) GetUser(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var user model.User
	if err := mgr.db.First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "Пользователь не найден")
		return
	}
	resputil.Success(c, gin.H{"user": &user})
}

// CreateUser godoc
// @Summary Создать пользователя (только админ)
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Router /api/users [post]
func (mgr *UserMgr) CreateUser(c *gin.Context) {
	var req CreateUserReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Email, пароль и имя обязательны")
		return
	}

	email := strings.ToLower(req.Email)
	var existing model.User
	err := mgr.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		resputil.BadRequestError(c, "Пользователь с таким email уже существует")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logutils.Log.Error("create user lookup: ", err)
		resputil.Error(c, "Ошибка создания пользователя")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logutils.Log.Error("hash password: ", err)
		resputil.Error(c, "Ошибка создания пользователя")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	//nolint:gosec // display color, not a security decision
	color := avatarColors[rand.Intn(len(avatarColors))]

	user := model.User{
		Email:        email,
		Password:     string(hash),
		Name:         req.Name,
		Position:     emptyToNil(req.Position),
		Phone:        emptyToNil(req.Phone),
		Role:         role,
		Competencies: datatypes.NewJSONSlice(req.Competencies),
		AvatarColor:  &color,
	}
	if err := mgr.db.Create(&user).Error; err != nil {
		logutils.Log.Error("create user: ", err)
		resputil.Error(c, "Ошибка создания пользователя")
		return
	}

	resputil.Success(c, gin.H{"user": &user})
}

// UpdateUser patches profile fields. A user may edit their own
// non-privileged fields; role, competencies and archival are admin-only
// and silently ignored for everyone else.
func (mgr *UserMgr) UpdateUser(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var user model.User
	if err := mgr.db.First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "Пользователь не найден")
		return
	}

	isSelf := who.UserID == id
	if !isSelf && !util.IsAdmin(who) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateUserReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Position != nil {
		user.Position = emptyToNil(req.Position)
	}
	if req.Phone != nil {
		user.Phone = emptyToNil(req.Phone)
	}
	if req.Avatar != nil {
		user.Avatar = emptyToNil(req.Avatar)
	}
	if req.AvatarColor != nil {
		user.AvatarColor = emptyToNil(req.AvatarColor)
	}

	if util.IsAdmin(who) {
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.Competencies != nil {
			user.Competencies = datatypes.NewJSONSlice(*req.Competencies)
		}
		if req.IsArchived != nil {
			user.IsArchived = *req.IsArchived
			if req.ArchiveReason != nil {
				user.ArchiveReason = emptyToNil(req.ArchiveReason)
			}
		}
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logutils.Log.Error("hash password: ", err)
			resputil.Error(c, "Ошибка обновления пользователя")
			return
		}
		user.Password = string(hash)
	}

	if err := mgr.db.Save(&user).Error; err != nil {
		logutils.Log.Error("update user: ", err)
		resputil.Error(c, "Ошибка обновления пользователя")
		return
	}

	resputil.Success(c, gin.H{"user": &user})
}

// DeleteUser hard-deletes a user. Self-deletion is rejected; archival is
// the soft path for everyone still referenced by history.
func (mgr *UserMgr) DeleteUser(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	if who.UserID == id {
		resputil.BadRequestError(c, "Нельзя удалить себя")
		return
	}

	var user model.User
	if err := mgr.db.First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "Пользователь не найден")
		return
	}

	if err := mgr.db.Delete(&user).Error; err != nil {
		logutils.Log.Error("delete user: ", err)
		resputil.Error(c, "Ошибка удаления пользователя")
		return
	}
	logutils.Log.Infof("user %d deleted by admin %d", id, who.UserID)
	resputil.Success(c, nil)
}
