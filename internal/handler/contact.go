package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewContactMgr)
}

type ContactMgr struct {
	name string
	db   *gorm.DB
}

func NewContactMgr(conf *RegisterConfig) Manager {
	return &ContactMgr{name: "contacts", db: conf.DB}
}

func (mgr *ContactMgr) GetName() string { return mgr.name }

func (mgr *ContactMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ContactMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListContacts)
	g.POST("", mgr.CreateContact)
	g.GET("/:id", mgr.GetContact)
	g.PUT("/:id", mgr.UpdateContact)
	g.DELETE("/:id", mgr.DeleteContact)
}

func (mgr *ContactMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateContactReq struct {
		ProjectID uint    `json:"projectId" binding:"required"`
		Name      string  `json:"name" binding:"required"`
		Position  *string `json:"position"`
		Company   *string `json:"company"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
		Notes     *string `json:"notes"`
	}

	UpdateContactReq struct {
		Name     *string `json:"name"`
		Position *string `json:"position"`
		Company  *string `json:"company"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email"`
		Notes    *string `json:"notes"`
	}
)

func (mgr *ContactMgr) ListContacts(c *gin.Context) {
	query := mgr.db.Order("name ASC")
	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var contacts []model.Contact
	if err := query.Find(&contacts).Error; err != nil {
		logutils.Log.Error("list contacts: ", err)
		resputil.Error(c, "Ошибка получения контактов")
		return
	}
	resputil.Success(c, gin.H{"contacts": contacts})
}

func (mgr *ContactMgr) CreateContact(c *gin.Context) {
	who := util.GetIdentity(c)

	var req CreateContactReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "projectId и name обязательны")
		return
	}

	var project model.Project
	if err := mgr.db.First(&project, req.ProjectID).Error; err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return
	}
	if !util.CanManageProject(who, &project) {
		resputil.ForbiddenError(c)
		return
	}

	contact := model.Contact{
		ProjectID: project.ID,
		Name:      req.Name,
		Position:  emptyToNil(req.Position),
		Company:   emptyToNil(req.Company),
		Phone:     emptyToNil(req.Phone),
		Email:     emptyToNil(req.Email),
		Notes:     emptyToNil(req.Notes),
	}
	if err := mgr.db.Create(&contact).Error; err != nil {
		logutils.Log.Error("create contact: ", err)
		resputil.Error(c, "Ошибка создания контакта")
		return
	}
	resputil.Success(c, gin.H{"contact": &contact})
}

func (mgr *ContactMgr) GetContact(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var contact model.Contact
	if err := mgr.db.First(&contact, id).Error; err != nil {
		resputil.NotFoundError(c, "Контакт не найден")
		return
	}
	resputil.Success(c, gin.H{"contact": &contact})
}

func (mgr *ContactMgr) loadWithProject(c *gin.Context, id uint) (*model.Contact, *model.Project, bool) {
	var contact model.Contact
	if err := mgr.db.First(&contact, id).Error; err != nil {
		resputil.NotFoundError(c, "Контакт не найден")
		return nil, nil, false
	}
	var project model.Project
	if err := mgr.db.First(&project, contact.ProjectID).Error; err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return nil, nil, false
	}
	return &contact, &project, true
}

func (mgr *ContactMgr) UpdateContact(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	contact, project, ok := mgr.loadWithProject(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateContactReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Name != nil && *req.Name != "" {
		contact.Name = *req.Name
	}
	if req.Position != nil {
		contact.Position = emptyToNil(req.Position)
	}
	if req.Company != nil {
		contact.Company = emptyToNil(req.Company)
	}
	if req.Phone != nil {
		contact.Phone = emptyToNil(req.Phone)
	}
	if req.Email != nil {
		contact.Email = emptyToNil(req.Email)
	}
	if req.Notes != nil {
		contact.Notes = emptyToNil(req.Notes)
	}

	if err := mgr.db.Save(contact).Error; err != nil {
		logutils.Log.Error("update contact: ", err)
		resputil.Error(c, "Ошибка обновления контакта")
		return
	}
	resputil.Success(c, gin.H{"contact": contact})
}

func (mgr *ContactMgr) DeleteContact(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	contact, project, ok := mgr.loadWithProject(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Delete(contact).Error; err != nil {
		logutils.Log.Error("delete contact: ", err)
		resputil.Error(c, "Ошибка удаления контакта")
		return
	}
	resputil.Success(c, nil)
}
