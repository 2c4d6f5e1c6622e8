package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name string
	db   *gorm.DB
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name: "projects",
		db:   conf.DB,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListProjects)
	g.POST("", mgr.CreateProject)
	g.GET("/:id", mgr.GetProject)
	g.PUT("/:id", mgr.UpdateProject)
}

func (mgr *ProjectMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.DELETE("/:id", mgr.DeleteProject)
}

type (
	ListProjectsReq struct {
		Status string `form:"status"`
		GipID  *uint  `form:"gip_id"`
	}

	// ProjectSummary is the list shape: the project row plus derived
	// progress counters.
	ProjectSummary struct {
		ID                 uint                `json:"id"`
		Name               string              `json:"name"`
		Code               *string             `json:"code"`
		Address            *string             `json:"address"`
		Type               *string             `json:"type"`
		Deadline           *string             `json:"deadline"`
		CustomerContact    *string             `json:"customerContact"`
		CustomerPhone      *string             `json:"customerPhone"`
		Status             model.ProjectStatus `json:"status"`
		Expertise          model.ExpertiseKind `json:"expertise"`
		GipID              *uint               `json:"gipId"`
		Gip                *model.UserRef      `json:"gip"`
		Progress           int                 `json:"progress"`
		SectionsTotal      int                 `json:"sectionsTotal"`
		SectionsCompleted  int                 `json:"sectionsCompleted"`
		SectionsInProgress int                 `json:"sectionsInProgress"`
		CreatedAt          time.Time           `json:"createdAt"`
	}

	InitialSectionReq struct {
		Code        string  `json:"code" binding:"required"`
		Description *string `json:"description"`
		AssigneeID  *uint   `json:"assigneeId"`
	}

	CreateProjectReq struct {
		Name            string              `json:"name" binding:"required"`
		Code            *string             `json:"code"`
		Address         *string             `json:"address"`
		Description     *string             `json:"description"`
		Type            *string             `json:"type"`
		Deadline        *string             `json:"deadline"`
		CustomerContact *string             `json:"customerContact"`
		CustomerPhone   *string             `json:"customerPhone"`
		Expertise       model.ExpertiseKind `json:"expertise"`
		GipID           *uint               `json:"gipId"`
		Sections        []InitialSectionReq `json:"sections"`
	}

	// UpdateProjectReq is a typed patch: nil means unchanged.
	UpdateProjectReq struct {
		Name            *string              `json:"name"`
		Code            *string              `json:"code"`
		Address         *string              `json:"address"`
		Description     *string              `json:"description"`
		Type            *string              `json:"type"`
		Deadline        *string              `json:"deadline"`
		CustomerContact *string              `json:"customerContact"`
		CustomerPhone   *string              `json:"customerPhone"`
		Status          *model.ProjectStatus `json:"status"`
		Expertise       *model.ExpertiseKind `json:"expertise"`
		GipID           *uint                `json:"gipId"`
		ArchiveReason   *string              `json:"archiveReason"`

		PositiveConclusionFile *string `json:"positiveConclusionFile"`
		PositiveConclusionName *string `json:"positiveConclusionName"`
	}
)

func summarize(p *model.Project) ProjectSummary {
	completed := lo.CountBy(p.Sections, func(s model.Section) bool { return s.Status == model.WorkCompleted })
	inProgress := lo.CountBy(p.Sections, func(s model.Section) bool { return s.Status == model.WorkInProgress })
	return ProjectSummary{
		ID:                 p.ID,
		Name:               p.Name,
		Code:               p.Code,
		Address:            p.Address,
		Type:               p.Type,
		Deadline:           p.Deadline,
		CustomerContact:    p.CustomerContact,
		CustomerPhone:      p.CustomerPhone,
		Status:             p.Status,
		Expertise:          p.Expertise,
		GipID:              p.GipID,
		Gip:                p.Gip.Ref(),
		Progress:           model.Progress(p.Sections),
		SectionsTotal:      len(p.Sections),
		SectionsCompleted:  completed,
		SectionsInProgress: inProgress,
		CreatedAt:          p.CreatedAt,
	}
}

// ListProjects godoc
// @Summary Список проектов с прогрессом по разделам
// @Tags Project
// @Produce json
// @Security Bearer
// @Param status query string false "Фильтр по статусу"
// @Param gip_id query int false "Фильтр по ГИПу"
// @Router /api/projects [get]
func (mgr *ProjectMgr) ListProjects(c *gin.Context) {
	var req ListProjectsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, "Некорректные параметры фильтра")
		return
	}

	q := mgr.db.Preload("Gip").Preload("Sections").Order("created_at DESC")
	if req.Status != "" && req.Status != "all" {
		q = q.Where("status = ?", req.Status)
	}
	if req.GipID != nil {
		q = q.Where("gip_id = ?", *req.GipID)
	}

	var projects []model.Project
	if err := q.Find(&projects).Error; err != nil {
		logutils.Log.Error("list projects: ", err)
		resputil.Error(c, "Ошибка получения проектов")
		return
	}

	summaries := lo.Map(projects, func(p model.Project, _ int) ProjectSummary {
		return summarize(&p)
	})
	resputil.Success(c, gin.H{"projects": summaries})
}

// CreateProject godoc
// @Summary Создать проект, опционально с начальными разделами
// @Description Проект и его разделы создаются в одной транзакции.
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Router /api/projects [post]
func (mgr *ProjectMgr) CreateProject(c *gin.Context) {
	who := util.GetIdentity(c)
	if who.Role != model.RoleAdmin && who.Role != model.RoleGip {
		resputil.ForbiddenError(c)
		return
	}

	var req CreateProjectReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Название проекта обязательно")
		return
	}

	expertise := req.Expertise
	if expertise == "" {
		expertise = model.ExpertiseNone
	}
	gipID := req.GipID
	if gipID == nil && who.Role == model.RoleGip {
		id := who.UserID
		gipID = &id
	}

	project := model.Project{
		Name:            req.Name,
		Code:            emptyToNil(req.Code),
		Address:         emptyToNil(req.Address),
		Description:     emptyToNil(req.Description),
		Type:            emptyToNil(req.Type),
		Deadline:        emptyToNil(req.Deadline),
		CustomerContact: emptyToNil(req.CustomerContact),
		CustomerPhone:   emptyToNil(req.CustomerPhone),
		Status:          model.ProjectInWork,
		Expertise:       expertise,
		GipID:           gipID,
	}

	// Проект с начальными разделами создаётся атомарно: либо всё, либо ничего.
	err := mgr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, s := range req.Sections {
			section := model.Section{
				ProjectID:  project.ID,
				Code:       s.Code,
				AssigneeID: s.AssigneeID,
			}
			if s.Description != nil {
				section.Description = *s.Description
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logutils.Log.Error("create project: ", err)
		resputil.Error(c, "Ошибка создания проекта")
		return
	}

	mgr.db.Preload("Gip").
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sections.created_at ASC") }).
		Preload("Sections.Assignee").
		First(&project, project.ID)

	resputil.Success(c, gin.H{"project": gin.H{
		"id":        project.ID,
		"name":      project.Name,
		"code":      project.Code,
		"status":    project.Status,
		"expertise": project.Expertise,
		"gipId":     project.GipID,
		"gip":       project.Gip.Ref(),
		"sections":  sectionViews(project.Sections),
		"createdAt": project.CreatedAt,
	}})
}

// GetProject returns the full project tree plus derived progress.
func (mgr *ProjectMgr) GetProject(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var project model.Project
	err := mgr.db.
		Preload("Gip").
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sections.created_at ASC") }).
		Preload("Sections.Assignee").
		Preload("Sections.IntroBlocks").
		Preload("Investigations", func(db *gorm.DB) *gorm.DB { return db.Order("investigations.created_at ASC") }).
		Preload("Investigations.Standard").
		Preload("Expertises").
		Preload("Expertises.Remarks").
		Preload("Contacts").
		Preload("IntroBlocks", func(db *gorm.DB) *gorm.DB {
			return db.Where("intro_blocks.section_id IS NULL").Order("intro_blocks.sort_order ASC")
		}).
		First(&project, id).Error
	if err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return
	}

	completed := lo.CountBy(project.Sections, func(s model.Section) bool { return s.Status == model.WorkCompleted })

	resputil.Success(c, gin.H{"project": gin.H{
		"id":                     project.ID,
		"name":                   project.Name,
		"code":                   project.Code,
		"address":                project.Address,
		"description":            project.Description,
		"type":                   project.Type,
		"deadline":               project.Deadline,
		"customerContact":        project.CustomerContact,
		"customerPhone":          project.CustomerPhone,
		"status":                 project.Status,
		"expertise":              project.Expertise,
		"gip":                    project.Gip.Ref(),
		"gipId":                  project.GipID,
		"archivedAt":             project.ArchivedAt,
		"archiveReason":          project.ArchiveReason,
		"positiveConclusionFile": project.PositiveConclusionFile,
		"positiveConclusionName": project.PositiveConclusionName,
		"sections":               sectionViews(project.Sections),
		"investigations":         investigationViews(project.Investigations),
		"expertises":             project.Expertises,
		"contacts":               project.Contacts,
		"introBlocks":            project.IntroBlocks,
		"progress":               model.Progress(project.Sections),
		"sectionsTotal":          len(project.Sections),
		"sectionsCompleted":      completed,
		"createdAt":              project.CreatedAt,
	}})
}

func sectionViews(sections []model.Section) []gin.H {
	return lo.Map(sections, func(s model.Section, _ int) gin.H {
		return gin.H{
			"id":                s.ID,
			"code":              s.Code,
			"description":       s.Description,
			"status":            s.Status,
			"expertiseStatus":   s.ExpertiseStatus,
			"assignee":          s.Assignee.Ref(),
			"assigneeId":        s.AssigneeID,
			"coAssignees":       s.CoAssignees,
			"startedAt":         s.StartedAt,
			"completedAt":       s.CompletedAt,
			"files":             s.Files,
			"completedFile":     s.CompletedFile,
			"completedFileName": s.CompletedFileName,
			"introBlocks":       s.IntroBlocks,
		}
	})
}

func investigationViews(investigations []model.Investigation) []gin.H {
	return lo.Map(investigations, func(inv model.Investigation, _ int) gin.H {
		return gin.H{
			"id":                inv.ID,
			"name":              inv.DisplayName(),
			"standardId":        inv.StandardID,
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
		}
	})
}

// UpdateProject patches project fields. Existence is checked before
// authorization so a missing project always reports 404.
func (mgr *ProjectMgr) UpdateProject(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var project model.Project
	if err := mgr.db.First(&project, id).Error; err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return
	}

	if !util.CanManageProject(who, &project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateProjectReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Code != nil {
		project.Code = emptyToNil(req.Code)
	}
	if req.Address != nil {
		project.Address = emptyToNil(req.Address)
	}
	if req.Description != nil {
		project.Description = emptyToNil(req.Description)
	}
	if req.Type != nil {
		project.Type = emptyToNil(req.Type)
	}
	if req.Deadline != nil {
		project.Deadline = emptyToNil(req.Deadline)
	}
	if req.CustomerContact != nil {
		project.CustomerContact = emptyToNil(req.CustomerContact)
	}
	if req.CustomerPhone != nil {
		project.CustomerPhone = emptyToNil(req.CustomerPhone)
	}
	if req.Status != nil {
		project.Status = *req.Status
		if *req.Status == model.ProjectArchived && project.ArchivedAt == nil {
			now := time.Now()
			project.ArchivedAt = &now
		}
	}
	if req.Expertise != nil {
		project.Expertise = *req.Expertise
	}
	if req.GipID != nil {
		project.GipID = req.GipID
	}
	if req.ArchiveReason != nil {
		project.ArchiveReason = emptyToNil(req.ArchiveReason)
	}
	if req.PositiveConclusionFile != nil {
		project.PositiveConclusionFile = emptyToNil(req.PositiveConclusionFile)
	}
	if req.PositiveConclusionName != nil {
		project.PositiveConclusionName = emptyToNil(req.PositiveConclusionName)
	}

	if err := mgr.db.Save(&project).Error; err != nil {
		logutils.Log.Error("update project: ", err)
		resputil.Error(c, "Ошибка обновления проекта")
		return
	}

	resputil.Success(c, gin.H{"project": &project})
}

// DeleteProject removes the project and all owned children (admin only;
// the route lives in the admin group).
func (mgr *ProjectMgr) DeleteProject(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var project model.Project
	if err := mgr.db.First(&project, id).Error; err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return
	}

	if err := mgr.db.Select("Sections", "Investigations", "Expertises", "Contacts", "IntroBlocks").
		Delete(&project).Error; err != nil {
		logutils.Log.Error("delete project: ", err)
		resputil.Error(c, "Ошибка удаления проекта")
		return
	}
	resputil.Success(c, nil)
}
