package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

// Справочники: типовые изыскания и типовые разделы. Чтение доступно всем
// авторизованным, правки только админу.

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewStandardInvestigationMgr)
	Registers = append(Registers, NewStandardSectionMgr)
}

type StandardInvestigationMgr struct {
	name string
	db   *gorm.DB
}

func NewStandardInvestigationMgr(conf *RegisterConfig) Manager {
	return &StandardInvestigationMgr{name: "standard-investigations", db: conf.DB}
}

func (mgr *StandardInvestigationMgr) GetName() string { return mgr.name }

func (mgr *StandardInvestigationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *StandardInvestigationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListStandardInvestigations)
}

func (mgr *StandardInvestigationMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.CreateStandardInvestigation)
	g.PUT("/:id", mgr.UpdateStandardInvestigation)
	g.DELETE("/:id", mgr.DeleteStandardInvestigation)
}

type (
	CreateStandardInvestigationReq struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		SortOrder   *int    `json:"sortOrder"`
	}

	UpdateStandardInvestigationReq struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		SortOrder   *int    `json:"sortOrder"`
		IsActive    *bool   `json:"isActive"`
	}
)

func (mgr *StandardInvestigationMgr) ListStandardInvestigations(c *gin.Context) {
	var items []model.StandardInvestigation
	err := mgr.db.Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").Find(&items).Error
	if err != nil {
		logutils.Log.Error("list standard investigations: ", err)
		resputil.Error(c, "Ошибка получения справочника")
		return
	}
	resputil.Success(c, gin.H{"standardInvestigations": items})
}

func (mgr *StandardInvestigationMgr) CreateStandardInvestigation(c *gin.Context) {
	var req CreateStandardInvestigationReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Название обязательно")
		return
	}

	item := model.StandardInvestigation{
		Name:        req.Name,
		Description: emptyToNil(req.Description),
		IsActive:    true,
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if err := mgr.db.Create(&item).Error; err != nil {
		resputil.BadRequestError(c, "Изыскание с таким названием уже существует")
		return
	}
	resputil.Success(c, gin.H{"standardInvestigation": &item})
}

func (mgr *StandardInvestigationMgr) UpdateStandardInvestigation(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var item model.StandardInvestigation
	if err := mgr.db.First(&item, id).Error; err != nil {
		resputil.NotFoundError(c, "Изыскание не найдено в справочнике")
		return
	}

	var req UpdateStandardInvestigationReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Name != nil && *req.Name != "" {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = emptyToNil(req.Description)
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := mgr.db.Save(&item).Error; err != nil {
		logutils.Log.Error("update standard investigation: ", err)
		resputil.Error(c, "Ошибка обновления справочника")
		return
	}
	resputil.Success(c, gin.H{"standardInvestigation": &item})
}

// DeleteStandardInvestigation deactivates rather than removes: existing
// project investigations keep their catalog reference.
func (mgr *StandardInvestigationMgr) DeleteStandardInvestigation(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var item model.StandardInvestigation
	if err := mgr.db.First(&item, id).Error; err != nil {
		resputil.NotFoundError(c, "Изыскание не найдено в справочнике")
		return
	}

	item.IsActive = false
	if err := mgr.db.Save(&item).Error; err != nil {
		logutils.Log.Error("deactivate standard investigation: ", err)
		resputil.Error(c, "Ошибка удаления из справочника")
		return
	}
	resputil.Success(c, nil)
}

type StandardSectionMgr struct {
	name string
	db   *gorm.DB
}

func NewStandardSectionMgr(conf *RegisterConfig) Manager {
	return &StandardSectionMgr{name: "standard-sections", db: conf.DB}
}

func (mgr *StandardSectionMgr) GetName() string { return mgr.name }

func (mgr *StandardSectionMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *StandardSectionMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListStandardSections)
}

func (mgr *StandardSectionMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.CreateStandardSection)
	g.PUT("/:id", mgr.UpdateStandardSection)
	g.DELETE("/:id", mgr.DeleteStandardSection)
}

type (
	CreateStandardSectionReq struct {
		Code      string `json:"code" binding:"required"`
		Name      string `json:"name" binding:"required"`
		SortOrder *int   `json:"sortOrder"`
	}

	UpdateStandardSectionReq struct {
		Code      *string `json:"code"`
		Name      *string `json:"name"`
		SortOrder *int    `json:"sortOrder"`
		IsActive  *bool   `json:"isActive"`
	}
)

func (mgr *StandardSectionMgr) ListStandardSections(c *gin.Context) {
	var items []model.StandardSection
	err := mgr.db.Where("is_active = ?", true).
		Order("sort_order ASC, code ASC").Find(&items).Error
	if err != nil {
		logutils.Log.Error("list standard sections: ", err)
		resputil.Error(c, "Ошибка получения справочника")
		return
	}
	resputil.Success(c, gin.H{"standardSections": items})
}

func (mgr *StandardSectionMgr) CreateStandardSection(c *gin.Context) {
	var req CreateStandardSectionReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Шифр и название обязательны")
		return
	}

	item := model.StandardSection{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if err := mgr.db.Create(&item).Error; err != nil {
		resputil.BadRequestError(c, "Раздел с таким шифром уже существует")
		return
	}
	resputil.Success(c, gin.H{"standardSection": &item})
}

func (mgr *StandardSectionMgr) UpdateStandardSection(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var item model.StandardSection
	if err := mgr.db.First(&item, id).Error; err != nil {
		resputil.NotFoundError(c, "Раздел не найден в справочнике")
		return
	}

	var req UpdateStandardSectionReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Code != nil && *req.Code != "" {
		item.Code = *req.Code
	}
	if req.Name != nil && *req.Name != "" {
		item.Name = *req.Name
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := mgr.db.Save(&item).Error; err != nil {
		logutils.Log.Error("update standard section: ", err)
		resputil.Error(c, "Ошибка обновления справочника")
		return
	}
	resputil.Success(c, gin.H{"standardSection": &item})
}

func (mgr *StandardSectionMgr) DeleteStandardSection(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var item model.StandardSection
	if err := mgr.db.First(&item, id).Error; err != nil {
		resputil.NotFoundError(c, "Раздел не найден в справочнике")
		return
	}

	item.IsActive = false
	if err := mgr.db.Save(&item).Error; err != nil {
		logutils.Log.Error("deactivate standard section: ", err)
		resputil.Error(c, "Ошибка удаления из справочника")
		return
	}
	resputil.Success(c, nil)
}
