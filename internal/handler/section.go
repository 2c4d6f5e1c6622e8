package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
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
	Registers = append(Registers, NewSectionMgr)
}

type SectionMgr struct {
	name    string
	db      *gorm.DB
	uploads *uploads.Store
}

func NewSectionMgr(conf *RegisterConfig) Manager {
	return &SectionMgr{
		name:    "sections",
		db:      conf.DB,
		uploads: conf.Uploads,
	}
}

func (mgr *SectionMgr) GetName() string { return mgr.name }

func (mgr *SectionMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *SectionMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.CreateSection)
	g.GET("/:id", mgr.GetSection)
	g.PUT("/:id", mgr.UpdateSection)
	g.DELETE("/:id", mgr.DeleteSection)
	g.POST("/:id/upload-complete", mgr.UploadComplete)
	g.GET("/:id/intro-blocks", mgr.ListIntroBlocks)
	g.POST("/:id/intro-blocks", mgr.CreateIntroBlock)
	g.GET("/:id/messages", mgr.ListMessages)
	g.POST("/:id/messages", mgr.CreateMessage)
}

func (mgr *SectionMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateSectionReq struct {
		ProjectID   uint    `json:"projectId" binding:"required"`
		Code        string  `json:"code" binding:"required"`
		Description *string `json:"description"`
		AssigneeID  *uint   `json:"assigneeId"`
	}

	// UpdateSectionReq is a typed patch: nil means unchanged.
	UpdateSectionReq struct {
		Code              *string           `json:"code"`
		Description       *string           `json:"description"`
		Status            *model.WorkStatus `json:"status"`
		ExpertiseStatus   *string           `json:"expertiseStatus"`
		AssigneeID        *uint             `json:"assigneeId"`
		CoAssignees       *[]uint           `json:"coAssignees"`
		Files             *[]model.FileRef  `json:"files"`
		CompletedFile     *string           `json:"completedFile"`
		CompletedFileName *string           `json:"completedFileName"`
	}

	CreateIntroBlockReq struct {
		Type      model.IntroBlockType `json:"type"`
		Title     string               `json:"title" binding:"required"`
		Content   *string              `json:"content"`
		FileName  *string              `json:"fileName"`
		FilePath  *string              `json:"filePath"`
		SortOrder *int                 `json:"sortOrder"`
	}

	CreateMessageReq struct {
		Content    string  `json:"content"`
		IsCritical bool    `json:"isCritical"`
		FileName   *string `json:"fileName"`
		FilePath   *string `json:"filePath"`
	}
)

// sectionWithProject loads the section and its owning project, writing 404
// on absence. Existence always resolves before authorization.
func (mgr *SectionMgr) sectionWithProject(c *gin.Context, id uint) (*model.Section, bool) {
	var section model.Section
	if err := mgr.db.Preload("Project").First(&section, id).Error; err != nil {
		resputil.NotFoundError(c, "Раздел не найден")
		return nil, false
	}
	return &section, true
}

// CreateSection godoc
// @Summary Создать раздел проекта
// @Tags Section
// @Accept json
// @Produce json
// @Security Bearer
// @Router /api/sections [post]
func (mgr *SectionMgr) CreateSection(c *gin.Context) {
	who := util.GetIdentity(c)

	var req CreateSectionReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "projectId и code обязательны")
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

	section := model.Section{
		ProjectID:  project.ID,
		Code:       req.Code,
		AssigneeID: req.AssigneeID,
	}
	if req.Description != nil {
		section.Description = *req.Description
	}
	if err := mgr.db.Create(&section).Error; err != nil {
		// Likely the unique (project, code) constraint.
		logutils.Log.Error("create section: ", err)
		resputil.Error(c, "Ошибка создания раздела")
		return
	}

	mgr.db.Preload("Assignee").First(&section, section.ID)
	resputil.Success(c, gin.H{"section": sectionView(&section)})
}

func sectionView(s *model.Section) gin.H {
	return gin.H{
		"id":                s.ID,
		"projectId":         s.ProjectID,
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
		"createdAt":         s.CreatedAt,
	}
}

func (mgr *SectionMgr) GetSection(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var section model.Section
	err := mgr.db.
		Preload("Assignee").
		Preload("IntroBlocks", func(db *gorm.DB) *gorm.DB { return db.Order("intro_blocks.sort_order ASC") }).
		Preload("Remarks", func(db *gorm.DB) *gorm.DB { return db.Order("expertise_remarks.created_at DESC") }).
		Preload("Remarks.Comments", func(db *gorm.DB) *gorm.DB { return db.Order("remark_comments.created_at ASC") }).
		Preload("Project").
		First(&section, id).Error
	if err != nil {
		resputil.NotFoundError(c, "Раздел не найден")
		return
	}

	view := sectionView(&section)
	view["introBlocks"] = section.IntroBlocks
	view["remarks"] = section.Remarks
	if section.Project != nil {
		view["project"] = gin.H{
			"id":   section.Project.ID,
			"name": section.Project.Name,
			"code": section.Project.Code,
		}
	}
	resputil.Success(c, gin.H{"section": view})
}

// UpdateSection patches section fields; the assignee may edit their own
// section. Status transitions stamp startedAt once and completedAt on
// every entry into completed.
func (mgr *SectionMgr) UpdateSection(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	section, ok := mgr.sectionWithProject(c, id)
	if !ok {
		return
	}

	if !util.CanEditSection(who, section, section.Project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateSectionReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Code != nil {
		section.Code = *req.Code
	}
	if req.Description != nil {
		section.Description = *req.Description
	}
	if req.Status != nil {
		section.ApplyStatus(*req.Status, time.Now())
	}
	if req.ExpertiseStatus != nil {
		section.ExpertiseStatus = emptyToNil(req.ExpertiseStatus)
	}
	if req.AssigneeID != nil {
		section.AssigneeID = req.AssigneeID
	}
	if req.CoAssignees != nil {
		section.CoAssignees = datatypes.NewJSONSlice(*req.CoAssignees)
	}
	if req.Files != nil {
		section.Files = datatypes.NewJSONSlice(*req.Files)
	}
	if req.CompletedFile != nil {
		section.CompletedFile = emptyToNil(req.CompletedFile)
	}
	if req.CompletedFileName != nil {
		section.CompletedFileName = emptyToNil(req.CompletedFileName)
	}

	if err := mgr.db.Save(section).Error; err != nil {
		logutils.Log.Error("update section: ", err)
		resputil.Error(c, "Ошибка обновления раздела")
		return
	}

	mgr.db.Preload("Assignee").First(section, section.ID)
	resputil.Success(c, gin.H{"section": sectionView(section)})
}

func (mgr *SectionMgr) DeleteSection(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	section, ok := mgr.sectionWithProject(c, id)
	if !ok {
		return
	}

	// Удалять разделы могут только админ и ГИП, исполнитель — нет.
	if !util.CanManageProject(who, section.Project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Select("IntroBlocks", "Messages").Delete(section).Error; err != nil {
		logutils.Log.Error("delete section: ", err)
		resputil.Error(c, "Ошибка удаления раздела")
		return
	}
	resputil.Success(c, nil)
}

// UploadComplete stores the section's finished deliverable.
func (mgr *SectionMgr) UploadComplete(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	section, ok := mgr.sectionWithProject(c, id)
	if !ok {
		return
	}

	if !util.CanEditSection(who, section, section.Project) {
		resputil.ForbiddenError(c)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequestError(c, "Файл не найден")
		return
	}

	saved, err := mgr.uploads.Save(c, "sections/"+c.Param("id"), fh)
	if err != nil {
		logutils.Log.Error("save deliverable: ", err)
		resputil.Error(c, "Ошибка загрузки файла")
		return
	}

	section.CompletedFile = &saved.Path
	section.CompletedFileName = &saved.OriginalName
	if err := mgr.db.Save(section).Error; err != nil {
		logutils.Log.Error("persist deliverable ref: ", err)
		resputil.Error(c, "Ошибка загрузки файла")
		return
	}

	resputil.Success(c, gin.H{
		"section": sectionView(section),
		"file": gin.H{
			"name": saved.OriginalName,
			"path": saved.Path,
		},
	})
}

func (mgr *SectionMgr) ListIntroBlocks(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var blocks []model.IntroBlock
	if err := mgr.db.Where("section_id = ?", id).Order("sort_order ASC").Find(&blocks).Error; err != nil {
		logutils.Log.Error("list intro blocks: ", err)
		resputil.Error(c, "Ошибка получения вводных блоков")
		return
	}
	resputil.Success(c, gin.H{"introBlocks": blocks})
}

// CreateIntroBlock appends at max(sortOrder)+1 unless an explicit order is
// given.
func (mgr *SectionMgr) CreateIntroBlock(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var req CreateIntroBlockReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Название обязательно")
		return
	}

	section, ok := mgr.sectionWithProject(c, id)
	if !ok {
		return
	}

	if !util.CanEditSection(who, section, section.Project) {
		resputil.ForbiddenError(c)
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		var maxOrder *int
		mgr.db.Model(&model.IntroBlock{}).Where("section_id = ?", id).
			Select("MAX(sort_order)").Scan(&maxOrder)
		if maxOrder != nil {
			sortOrder = *maxOrder + 1
		} else {
			sortOrder = 1
		}
	}

	blockType := req.Type
	if blockType == "" {
		blockType = model.IntroBlockText
	}

	sectionID := section.ID
	block := model.IntroBlock{
		SectionID: &sectionID,
		ProjectID: section.ProjectID,
		Type:      blockType,
		Title:     req.Title,
		Content:   emptyToNil(req.Content),
		FileName:  emptyToNil(req.FileName),
		FilePath:  emptyToNil(req.FilePath),
		SortOrder: sortOrder,
	}
	if err := mgr.db.Create(&block).Error; err != nil {
		logutils.Log.Error("create intro block: ", err)
		resputil.Error(c, "Ошибка создания вводного блока")
		return
	}

	resputil.Success(c, gin.H{"introBlock": &block})
}

func (mgr *SectionMgr) ListMessages(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	var messages []model.Message
	err := mgr.db.Preload("Author").Where("section_id = ?", id).
		Order("created_at ASC").Find(&messages).Error
	if err != nil {
		logutils.Log.Error("list messages: ", err)
		resputil.Error(c, "Ошибка получения сообщений")
		return
	}

	views := make([]gin.H, 0, len(messages))
	for i := range messages {
		views = append(views, messageView(&messages[i]))
	}
	resputil.Success(c, gin.H{"messages": views})
}

func messageView(m *model.Message) gin.H {
	view := gin.H{
		"id":         m.ID,
		"sectionId":  m.SectionID,
		"content":    m.Content,
		"isCritical": m.IsCritical,
		"fileName":   m.FileName,
		"filePath":   m.FilePath,
		"createdAt":  m.CreatedAt,
	}
	if m.Author != nil {
		view["author"] = gin.H{
			"id":          m.Author.ID,
			"name":        m.Author.Name,
			"avatarColor": m.Author.AvatarColor,
		}
	}
	return view
}

// CreateMessage requires text or a file reference; any authenticated user
// on the project may write to the section chat.
func (mgr *SectionMgr) CreateMessage(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	var req CreateMessageReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}
	if strings.TrimSpace(req.Content) == "" && emptyToNil(req.FileName) == nil {
		resputil.BadRequestError(c, "Содержание или файл обязательны")
		return
	}

	section, ok := mgr.sectionWithProject(c, id)
	if !ok {
		return
	}

	projectID := section.ProjectID
	message := model.Message{
		SectionID:  section.ID,
		ProjectID:  &projectID,
		AuthorID:   who.UserID,
		Content:    req.Content,
		IsCritical: req.IsCritical,
		FileName:   emptyToNil(req.FileName),
		FilePath:   emptyToNil(req.FilePath),
	}
	if err := mgr.db.Create(&message).Error; err != nil {
		logutils.Log.Error("create message: ", err)
		resputil.Error(c, "Ошибка создания сообщения")
		return
	}

	if err := mgr.db.Preload("Author").First(&message, message.ID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		logutils.Log.Error("reload message: ", err)
	}
	resputil.Success(c, gin.H{"message": messageView(&message)})
}
