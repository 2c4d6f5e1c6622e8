package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewRemarkMgr)
}

type RemarkMgr struct {
	name    string
	db      *gorm.DB
	uploads *uploads.Store
}

func NewRemarkMgr(conf *RegisterConfig) Manager {
	return &RemarkMgr{
		name:    "remarks",
		db:      conf.DB,
		uploads: conf.Uploads,
	}
}

func (mgr *RemarkMgr) GetName() string { return mgr.name }

func (mgr *RemarkMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *RemarkMgr) RegisterProtected(g *gin.RouterGroup) {
	g.PUT("/:id", mgr.UpdateRemark)
	g.DELETE("/:id", mgr.DeleteRemark)
	g.POST("/:id/response", mgr.RespondRemark)
	g.POST("/:id/comments", mgr.CreateComment)
}

func (mgr *RemarkMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	UpdateRemarkReq struct {
		Content     *string             `json:"content"`
		Number      *string             `json:"number"`
		SectionID   *uint               `json:"sectionId"`
		SectionCode *string             `json:"sectionCode"`
		Status      *model.RemarkStatus `json:"status"`
	}

	RespondRemarkReq struct {
		Content *string `form:"content"`
	}

	CreateCommentReq struct {
		Content  string  `json:"content" binding:"required"`
		FileName *string `json:"fileName"`
		FilePath *string `json:"filePath"`
	}
)

// remarkChain loads the remark and walks up to the owning project. Remark
// mutation is project-level: admin and the owning GIP only, never the
// tagged section's assignee.
func (mgr *RemarkMgr) remarkChain(c *gin.Context, id uint) (*model.ExpertiseRemark, *model.Project, bool) {
	var remark model.ExpertiseRemark
	err := mgr.db.Preload("Section").Preload("Expertise.Project").First(&remark, id).Error
	if err != nil {
		resputil.NotFoundError(c, "Замечание не найдено")
		return nil, nil, false
	}
	var project *model.Project
	if remark.Expertise != nil {
		project = remark.Expertise.Project
	}
	return &remark, project, true
}

// UpdateRemark patches remark fields; status moves go through the remark
// workflow, so closing an unanswered remark is rejected.
func (mgr *RemarkMgr) UpdateRemark(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	remark, project, ok := mgr.remarkChain(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateRemarkReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		remark.Content = *req.Content
	}
	if req.Number != nil {
		remark.Number = emptyToNil(req.Number)
	}
	if req.SectionID != nil {
		remark.SectionID = req.SectionID
	}
	if req.SectionCode != nil {
		remark.SectionCode = emptyToNil(req.SectionCode)
	}
	if req.Status != nil {
		if err := remark.SetStatus(*req.Status); err != nil {
			switch {
			case errors.Is(err, model.ErrRemarkNotResponded):
				resputil.BadRequestError(c, "Нельзя закрыть замечание без ответа")
			case errors.Is(err, model.ErrRemarkClosed):
				resputil.BadRequestError(c, "Закрытое замечание нельзя открыть заново")
			default:
				resputil.BadRequestError(c, "Недопустимый статус замечания")
			}
			return
		}
	}

	if err := mgr.db.Save(remark).Error; err != nil {
		logutils.Log.Error("update remark: ", err)
		resputil.Error(c, "Ошибка обновления замечания")
		return
	}
	resputil.Success(c, gin.H{"remark": remarkView(remark)})
}

func (mgr *RemarkMgr) DeleteRemark(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	remark, project, ok := mgr.remarkChain(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Select("Comments").Delete(remark).Error; err != nil {
		logutils.Log.Error("delete remark: ", err)
		resputil.Error(c, "Ошибка удаления замечания")
		return
	}
	resputil.Success(c, nil)
}

// RespondRemark records the official response to a remark. A repeated call
// replaces the previous response and refreshes the response stamp.
func (mgr *RemarkMgr) RespondRemark(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	remark, project, ok := mgr.remarkChain(c, id)
	if !ok {
		return
	}
	if !util.CanManageProject(who, project) {
		resputil.ForbiddenError(c)
		return
	}

	var req RespondRemarkReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	var filePath, fileName *string
	if fh, err := c.FormFile("file"); err == nil {
		saved, err := mgr.uploads.Save(c, "remarks/"+strconv.FormatUint(uint64(remark.ExpertiseID), 10), fh)
		if err != nil {
			logutils.Log.Error("save response file: ", err)
			resputil.Error(c, "Ошибка загрузки файла")
			return
		}
		filePath = &saved.Path
		fileName = &saved.OriginalName
	}

	content := emptyToNil(req.Content)
	if content == nil && filePath == nil {
		resputil.BadRequestError(c, "Ответ должен содержать текст или файл")
		return
	}

	remark.Respond(content, filePath, fileName, who.UserID, time.Now())

	if err := mgr.db.Save(remark).Error; err != nil {
		logutils.Log.Error("respond remark: ", err)
		resputil.Error(c, "Ошибка сохранения ответа")
		return
	}
	resputil.Success(c, gin.H{"remark": remarkView(remark)})
}

// CreateComment appends a discussion entry; any authenticated user may
// comment.
func (mgr *RemarkMgr) CreateComment(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var req CreateCommentReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Содержание обязательно")
		return
	}

	var remark model.ExpertiseRemark
	if err := mgr.db.First(&remark, id).Error; err != nil {
		resputil.NotFoundError(c, "Замечание не найдено")
		return
	}

	comment := model.RemarkComment{
		RemarkID: remark.ID,
		AuthorID: who.UserID,
		Content:  req.Content,
		FileName: emptyToNil(req.FileName),
		FilePath: emptyToNil(req.FilePath),
	}
	if err := mgr.db.Create(&comment).Error; err != nil {
		logutils.Log.Error("create remark comment: ", err)
		resputil.Error(c, "Ошибка создания комментария")
		return
	}
	resputil.Success(c, gin.H{"comment": &comment})
}
