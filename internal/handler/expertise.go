package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewExpertiseMgr)
}

type ExpertiseMgr struct {
	name    string
	db      *gorm.DB
	uploads *uploads.Store
}

func NewExpertiseMgr(conf *RegisterConfig) Manager {
	return &ExpertiseMgr{
		name:    "expertises",
		db:      conf.DB,
		uploads: conf.Uploads,
	}
}

func (mgr *ExpertiseMgr) GetName() string { return mgr.name }

func (mgr *ExpertiseMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ExpertiseMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListExpertises)
	g.POST("", mgr.CreateExpertise)
	g.GET("/:id", mgr.GetExpertise)
	g.PUT("/:id", mgr.UpdateExpertise)
	g.DELETE("/:id", mgr.DeleteExpertise)
	g.GET("/:id/remarks", mgr.ListRemarks)
	g.POST("/:id/remarks", mgr.CreateRemark)
}

func (mgr *ExpertiseMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateExpertiseReq struct {
		ProjectID uint           `json:"projectId" binding:"required"`
		StageName *string        `json:"stageName"`
		StartDate *string        `json:"startDate"`
		EndDate   *string        `json:"endDate"`
		Experts   []model.Expert `json:"experts"`
	}

	UpdateExpertiseReq struct {
		StageName *string          `json:"stageName"`
		StartDate *string          `json:"startDate"`
		EndDate   *string          `json:"endDate"`
		Experts   *[]model.Expert  `json:"experts"`
		Files     *[]model.FileRef `json:"files"`
	}

	// CreateRemarkReq binds multipart form fields; the optional reviewer
	// file arrives under "file".
	CreateRemarkReq struct {
		Content     string  `form:"content" binding:"required"`
		Number      *string `form:"number"`
		SectionID   *uint   `form:"sectionId"`
		SectionCode *string `form:"sectionCode"`
	}
)

func (mgr *ExpertiseMgr) expertiseWithProject(c *gin.Context, id uint) (*model.Expertise, bool) {
	var expertise model.Expertise
	if err := mgr.db.Preload("Project").First(&expertise, id).Error; err != nil {
		resputil.NotFoundError(c, "Экспертиза не найдена")
		return nil, false
	}
	return &expertise, true
}

func remarkView(r *model.ExpertiseRemark) gin.H {
	view := gin.H{
		"id":               r.ID,
		"expertiseId":      r.ExpertiseID,
		"sectionId":        r.SectionID,
		"section":          r.Section.Ref(),
		"sectionCode":      r.SectionCode,
		"number":           r.Number,
		"content":          r.Content,
		"fileName":         r.FileName,
		"filePath":         r.FilePath,
		"status":           r.Status,
		"responseContent":  r.ResponseContent,
		"responseFile":     r.ResponseFile,
		"responseFileName": r.ResponseFileName,
		"respondedBy":      r.RespondedBy,
		"respondedAt":      r.RespondedAt,
		"createdAt":        r.CreatedAt,
	}
	if r.Comments != nil {
		view["comments"] = r.Comments
	}
	return view
}

func expertiseView(e *model.Expertise) gin.H {
	remarks := lo.Map(e.Remarks, func(r model.ExpertiseRemark, _ int) gin.H {
		return remarkView(&r)
	})
	return gin.H{
		"id":          e.ID,
		"projectId":   e.ProjectID,
		"stageName":   e.StageName,
		"startDate":   e.StartDate,
		"endDate":     e.EndDate,
		"experts":     e.Experts,
		"files":       e.Files,
		"remarks":     remarks,
		"remarksOpen": lo.CountBy(e.Remarks, func(r model.ExpertiseRemark) bool { return r.Status != model.RemarkClosed }),
		"createdAt":   e.CreatedAt,
	}
}

func (mgr *ExpertiseMgr) ListExpertises(c *gin.Context) {
	query := mgr.db.Preload("Remarks").Order("created_at ASC")
	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var expertises []model.Expertise
	if err := query.Find(&expertises).Error; err != nil {
		logutils.Log.Error("list expertises: ", err)
		resputil.Error(c, "Ошибка получения экспертиз")
		return
	}

	views := make([]gin.H, 0, len(expertises))
	for i := range expertises {
		views = append(views, expertiseView(&expertises[i]))
	}
	resputil.Success(c, gin.H{"expertises": views})
}

func (mgr *ExpertiseMgr) CreateExpertise(c *gin.Context) {
	who := util.GetIdentity(c)

	var req CreateExpertiseReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "projectId обязателен")
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

	expertise := model.Expertise{
		ProjectID: project.ID,
		StageName: emptyToNil(req.StageName),
		StartDate: emptyToNil(req.StartDate),
		EndDate:   emptyToNil(req.EndDate),
		Experts:   datatypes.NewJSONSlice(req.Experts),
	}
	if err := mgr.db.Create(&expertise).Error; err != nil {
		logutils.Log.Error("create expertise: ", err)
		resputil.Error(c, "Ошибка создания экспертизы")
		return
	}
	resputil.Success(c, gin.H{"expertise": expertiseView(&expertise)})
}

// GetExpertise returns the stage with its full remark tree. Remarks carry
// a short section reference so the client can link back into the project.
func (mgr *ExpertiseMgr) GetExpertise(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var expertise model.Expertise
	err := mgr.db.
		Preload("Remarks", func(db *gorm.DB) *gorm.DB { return db.Order("expertise_remarks.created_at ASC") }).
		Preload("Remarks.Section").
		Preload("Remarks.Comments", func(db *gorm.DB) *gorm.DB { return db.Order("remark_comments.created_at ASC") }).
		Preload("Project").
		First(&expertise, id).Error
	if err != nil {
		resputil.NotFoundError(c, "Экспертиза не найдена")
		return
	}

	view := expertiseView(&expertise)
	if expertise.Project != nil {
		view["project"] = gin.H{
			"id":   expertise.Project.ID,
			"name": expertise.Project.Name,
			"code": expertise.Project.Code,
		}
	}
	resputil.Success(c, gin.H{"expertise": view})
}

func (mgr *ExpertiseMgr) UpdateExpertise(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	expertise, ok := mgr.expertiseWithProject(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, expertise.Project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateExpertiseReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.StageName != nil {
		expertise.StageName = emptyToNil(req.StageName)
	}
	if req.StartDate != nil {
		expertise.StartDate = emptyToNil(req.StartDate)
	}
	if req.EndDate != nil {
		expertise.EndDate = emptyToNil(req.EndDate)
	}
	if req.Experts != nil {
		expertise.Experts = datatypes.NewJSONSlice(*req.Experts)
	}
	if req.Files != nil {
		expertise.Files = datatypes.NewJSONSlice(*req.Files)
	}

	if err := mgr.db.Save(expertise).Error; err != nil {
		logutils.Log.Error("update expertise: ", err)
		resputil.Error(c, "Ошибка обновления экспертизы")
		return
	}
	resputil.Success(c, gin.H{"expertise": expertiseView(expertise)})
}

func (mgr *ExpertiseMgr) DeleteExpertise(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	expertise, ok := mgr.expertiseWithProject(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, expertise.Project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Select("Remarks").Delete(expertise).Error; err != nil {
		logutils.Log.Error("delete expertise: ", err)
		resputil.Error(c, "Ошибка удаления экспертизы")
		return
	}
	resputil.Success(c, nil)
}

func (mgr *ExpertiseMgr) ListRemarks(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var remarks []model.ExpertiseRemark
	err := mgr.db.Preload("Section").Preload("Comments").
		Where("expertise_id = ?", id).Order("created_at ASC").Find(&remarks).Error
	if err != nil {
		logutils.Log.Error("list remarks: ", err)
		resputil.Error(c, "Ошибка получения замечаний")
		return
	}

	views := make([]gin.H, 0, len(remarks))
	for i := range remarks {
		views = append(views, remarkView(&remarks[i]))
	}
	resputil.Success(c, gin.H{"remarks": views})
}

// CreateRemark registers a reviewer remark, with an optional scan of the
// original remark document.
func (mgr *ExpertiseMgr) CreateRemark(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	expertise, ok := mgr.expertiseWithProject(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, expertise.Project) {
		resputil.ForbiddenError(c)
		return
	}

	var req CreateRemarkReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Содержание замечания обязательно")
		return
	}

	remark := model.ExpertiseRemark{
		ExpertiseID: expertise.ID,
		SectionID:   req.SectionID,
		SectionCode: emptyToNil(req.SectionCode),
		Number:      emptyToNil(req.Number),
		Content:     req.Content,
		Status:      model.RemarkOpen,
	}

	if fh, err := c.FormFile("file"); err == nil {
		saved, err := mgr.uploads.Save(c, "remarks/"+strconv.FormatUint(uint64(expertise.ID), 10), fh)
		if err != nil {
			logutils.Log.Error("save remark file: ", err)
			resputil.Error(c, "Ошибка загрузки файла")
			return
		}
		remark.FilePath = &saved.Path
		remark.FileName = &saved.OriginalName
	}

	if err := mgr.db.Create(&remark).Error; err != nil {
		logutils.Log.Error("create remark: ", err)
		resputil.Error(c, "Ошибка создания замечания")
		return
	}

	mgr.db.Preload("Section").First(&remark, remark.ID)
	resputil.Success(c, gin.H{"remark": remarkView(&remark)})
}
