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
	Registers = append(Registers, NewIntroBlockMgr)
}

type IntroBlockMgr struct {
	name string
	db   *gorm.DB
}

func NewIntroBlockMgr(conf *RegisterConfig) Manager {
	return &IntroBlockMgr{name: "intro-blocks", db: conf.DB}
}

func (mgr *IntroBlockMgr) GetName() string { return mgr.name }

func (mgr *IntroBlockMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *IntroBlockMgr) RegisterProtected(g *gin.RouterGroup) {
	g.PUT("/:id", mgr.UpdateIntroBlock)
	g.DELETE("/:id", mgr.DeleteIntroBlock)
}

func (mgr *IntroBlockMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type UpdateIntroBlockReq struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	FileName  *string `json:"fileName"`
	FilePath  *string `json:"filePath"`
	SortOrder *int    `json:"sortOrder"`
}

// load resolves the block and its ownership chain. Section blocks admit the
// assignee; project-level blocks answer to admin and GIP only.
func (mgr *IntroBlockMgr) load(c *gin.Context, id uint) (*model.IntroBlock, *model.Section, *model.Project, bool) {
	var block model.IntroBlock
	if err := mgr.db.First(&block, id).Error; err != nil {
		resputil.NotFoundError(c, "Вводный блок не найден")
		return nil, nil, nil, false
	}

	if block.SectionID != nil {
		var section model.Section
		if err := mgr.db.Preload("Project").First(&section, *block.SectionID).Error; err != nil {
			resputil.NotFoundError(c, "Раздел не найден")
			return nil, nil, nil, false
		}
		return &block, &section, section.Project, true
	}

	var project model.Project
	if err := mgr.db.First(&project, block.ProjectID).Error; err != nil {
		resputil.NotFoundError(c, "Проект не найден")
		return nil, nil, nil, false
	}
	return &block, nil, &project, true
}

func (mgr *IntroBlockMgr) UpdateIntroBlock(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	block, section, project, ok := mgr.load(c, id)
	if !ok {
		return
	}
	if !util.CanEditSection(who, section, project) {
		resputil.ForbiddenError(c)
		return
	}

	var req UpdateIntroBlockReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, "Некорректный запрос")
		return
	}

	if req.Title != nil {
		block.Title = *req.Title
	}
	if req.Content != nil {
		block.Content = emptyToNil(req.Content)
	}
	if req.FileName != nil {
		block.FileName = emptyToNil(req.FileName)
	}
	if req.FilePath != nil {
		block.FilePath = emptyToNil(req.FilePath)
	}
	if req.SortOrder != nil {
		block.SortOrder = *req.SortOrder
	}

	if err := mgr.db.Save(block).Error; err != nil {
		logutils.Log.Error("update intro block: ", err)
		resputil.Error(c, "Ошибка обновления вводного блока")
		return
	}
	resputil.Success(c, gin.H{"introBlock": block})
}

func (mgr *IntroBlockMgr) DeleteIntroBlock(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	who := util.GetIdentity(c)

	block, section, project, ok := mgr.load(c, id)
	if !ok {
		return
	}
	if !util.CanEditSection(who, section, project) {
		resputil.ForbiddenError(c)
		return
	}

	if err := mgr.db.Delete(block).Error; err != nil {
		logutils.Log.Error("delete intro block: ", err)
		resputil.Error(c, "Ошибка удаления вводного блока")
		return
	}
	resputil.Success(c, nil)
}
