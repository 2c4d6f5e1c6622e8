package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/middleware"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/config"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: conf.TokenMgr,
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.POST("/logout", mgr.Logout)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me", mgr.Me)
}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const cookieMaxAge = 60 * 60 * 24 * 7 // matches the token expiry

// Login godoc
// @Summary Вход по email и паролю
// @Description Возвращает пользователя и JWT, ставит cookie auth_token
// @Tags Auth
// @Accept json
// @Produce json
// @Router /api/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Email и пароль обязательны")
		return
	}

	l := logutils.Log.WithFields(logutils.Fields{"email": req.Email})

	var user model.User
	err := mgr.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("login lookup: ", err)
			resputil.Error(c, resputil.MsgServerError)
			return
		}
		// Unknown email and wrong password are indistinguishable.
		resputil.HTTPError(c, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}

	if user.IsArchived {
		resputil.HTTPError(c, http.StatusForbidden, "Пользователь архивирован")
		return
	}

	token, err := mgr.tokenMgr.CreateToken(&user)
	if err != nil {
		l.Error("sign token: ", err)
		resputil.Error(c, resputil.MsgServerError)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, cookieMaxAge, "/", "", !config.IsDebugMode(), true)

	l.Info("login ok")
	resputil.Success(c, gin.H{
		"user":  &user,
		"token": token,
	})
}

// Me returns the live identity derived by the middleware.
func (mgr *AuthMgr) Me(c *gin.Context) {
	who := util.GetIdentity(c)

	var user model.User
	if err := mgr.db.First(&user, who.UserID).Error; err != nil {
		resputil.UnauthorizedError(c)
		return
	}
	resputil.Success(c, gin.H{"user": &user})
}

func (mgr *AuthMgr) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", !config.IsDebugMode(), true)
	resputil.Success(c, nil)
}
