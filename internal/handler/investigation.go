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
	Registers = append(Registers, NewInvestigationMgr)
}

type InvestigationMgr struct {
	name string
	db   *gorm.DB
}

func NewInvestigationMgr(conf *RegisterConfig) Manager {
	return &InvestigationMgr{name: "investigations", db: conf.DB}
}

func (mgr *InvestigationMgr) GetName() string { return mgr.name }

func (mgr *InvestigationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *InvestigationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListInvestigations)
	g.POST("", mgr.CreateInvestigation)
	g.GET("/:id", mgr.GetInvestigation)
	g.PUT("/:id", mgr.UpdateInvestigation)
	g.DELETE("/:id", mgr.DeleteInvestigation)
}

func (mgr *InvestigationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateInvestigationReq struct {
		ProjectID  uint    `json:"projectId" binding:"required"`
		StandardID *uint   `json:"standardId"`
		CustomName *string `json:"customName"`
	}

	UpdateInvestigationReq struct {
		Status            *model.WorkStatus `json:"status"`
		ContractorName    *string           `json:"contractorName"`
		ContractorContact *string           `json:"contractorContact"`
		ContractorPhone   *string           `json:"contractorPhone"`
		ContractorEmail   *string           `json:"contractorEmail"`
		ContractNumber    *string           `json:"contractNumber"`
		ContractDate      *string           `json:"contractDate"`
		ContractFile      *string           `json:"contractFile"`
		ContractFileName  *string           `json:"contractFileName"`
		ResultFile        *string           `json:"resultFile"`
		ResultFileName    *string           `json:"resultFileName"`
		StartDate         *string           `json:"startDate"`
		EndDate           *string           `json:"endDate"`
		Description       *string           `json:"description"`
	}
)

func investigationView(inv *model.Investigation) gin.H {
	return gin.H{
		"id":                inv.ID,
		"projectId":         inv.ProjectID,
		"standardId":        inv.StandardID,
		"name":              inv.DisplayName(),
		"customName":        inv.CustomName,
		"isCustom":          inv.IsCustom,
		"status":            inv.Status,
		"contractorName":    inv.ContractorName,
		"contractorContact": inv.ContractorContact,
		"contractorPhone":   inv.ContractorPhone,
		"contractorEmail":   inv.ContractorEmail,
		"contractNumber":    inv.ContractNumber,
		"contractDate":      inv.ContractDate,
		"contractFile":      inv.ContractFile,
		"contractFileName":  inv.ContractFileName,
		"resultFile":        inv.ResultFile,
		"resultFileName":    inv.ResultFileName,
		"startDate":         inv.StartDate,
		"endDate":           inv.EndDate,
		"description":       inv.Description,
		"createdAt":         inv.CreatedAt,
	}
}

func (mgr *InvestigationMgr) ListInvestigations(c *gin.Context) {
	query := mgr.db.Preload("Standard").Order("created_at ASC")
	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var investigations []model.Investigation
	if err := query.Find(&investigations).Error; err != nil {
		logutils.Log.Error("list investigations: ", err)
		resputil.Error(c, "Ошибка получения изысканий")
		return
	}

	views := make([]gin.H, 0, len(investigations))
	for i := range investigations {
		views = append(views, investigationView(&investigations[i]))
	}
	resputil.Success(c, gin.H{"investigations": views})
}

// CreateInvestigation attaches either a catalog entry or a custom-named
// investigation to a project.
func (mgr *InvestigationMgr) CreateInvestigation(c *gin.Context) {
	who := util.GetIdentity(c)

	var req CreateInvestigationReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "projectId обязателен")
		return
	}
	if req.StandardID == nil && emptyToNil(req.CustomName) == nil {
		resputil.BadRequestError(c, "Укажите изыскание из справочника или собственное название")
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

	inv := model.Investigation{
		ProjectID:  project.ID,
		StandardID: req.StandardID,
		CustomName: emptyToNil(req.CustomName),
		IsCustom:   req.StandardID == nil,
	}
	if inv.StandardID != nil {
		var standard model.StandardInvestigation
		if err := mgr.db.First(&standard, *inv.StandardID).Error; err != nil {
			resputil.NotFoundError(c, "Изыскание не найдено в справочнике")
			return
		}
		inv.Standard = &standard
	}

	if err := mgr.db.Create(&inv).Error; err != nil {
		logutils.Log.Error("create investigation: ", err)
		resputil.Error(c, "Ошибка создания изыскания")
		return
	}
	resputil.Success(c, gin.H{"investigation": investigationView(&inv)})
}

func (mgr *InvestigationMgr) GetInvestigation(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var inv model.Investigation
	if err := mgr.db.Preload("Standard").First(&inv, id).Error; err != nil {
		resputil.NotFoundError(c, "Изыскание не найдено")
		return
	}
	resputil.Success(c, gin.H{"investigation": investigationView(&inv)})
}

func (mgr *InvestigationMgr) UpdateInvestigation(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var inv model.Investigation
	if err := mgr.db.Preload("Standard").Preload("Project").First(&inv, id).Error; err != nil {
		resputil.NotFoundError(c, "Изыскание не найдено")
		return
	}
	if !util.CanManageProject(who, inv.Project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateInvestigationReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Status != nil {
		inv.Status = *req.Status
	}
	if req.ContractorName != nil {
		inv.ContractorName = emptyToNil(req.ContractorName)
	}
	if req.ContractorContact != nil {
		inv.ContractorContact = emptyToNil(req.ContractorContact)
	}
	if req.ContractorPhone != nil {
		inv.ContractorPhone = emptyToNil(req.ContractorPhone)
	}
	if req.ContractorEmail != nil {
		inv.ContractorEmail = emptyToNil(req.ContractorEmail)
	}
	if req.ContractNumber != nil {
		inv.ContractNumber = emptyToNil(req.ContractNumber)
	}
	if req.ContractDate != nil {
		inv.ContractDate = emptyToNil(req.ContractDate)
	}
	if req.ContractFile != nil {
		inv.ContractFile = emptyToNil(req.ContractFile)
	}
	if req.ContractFileName != nil {
		inv.ContractFileName = emptyToNil(req.ContractFileName)
	}
	if req.ResultFile != nil {
		inv.ResultFile = emptyToNil(req.ResultFile)
	}
	if req.ResultFileName != nil {
		inv.ResultFileName = emptyToNil(req.ResultFileName)
	}
	if req.StartDate != nil {
		inv.StartDate = emptyToNil(req.StartDate)
	}
	if req.EndDate != nil {
		inv.EndDate = emptyToNil(req.EndDate)
	}
	if req.Description != nil {
		inv.Description = emptyToNil(req.Description)
	}

	if err := mgr.db.Save(&inv).Error; err != nil {
		logutils.Log.Error("update investigation: ", err)
		resputil.Error(c, "Ошибка обновления изыскания")
		return
	}
	resputil.Success(c, gin.H{"investigation": investigationView(&inv)})
}

func (mgr *InvestigationMgr) DeleteInvestigation(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var inv model.Investigation
	if err := mgr.db.Preload("Project").First(&inv, id).Error; err != nil {
		resputil.NotFoundError(c, "Изыскание не найдено")
		return
	}
	if !util.CanManageProject(who, inv.Project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Delete(&inv).Error; err != nil {
		logutils.Log.Error("delete investigation: ", err)
		resputil.Error(c, "Ошибка удаления изыскания")
		return
	}
	resputil.Success(c, nil)
}
