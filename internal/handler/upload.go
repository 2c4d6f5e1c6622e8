package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/internal/resputil"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUploadMgr)
}

type UploadMgr struct {
	name    string
	db      *gorm.DB
	uploads *uploads.Store
}

func NewUploadMgr(conf *RegisterConfig) Manager {
	return &UploadMgr{
		name:    "upload",
		db:      conf.DB,
		uploads: conf.Uploads,
	}
}

func (mgr *UploadMgr) GetName() string { return mgr.name }

func (mgr *UploadMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UploadMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Upload)
}

func (mgr *UploadMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type UploadForm struct {
	ProjectID *uint `form:"projectId"`
	SectionID *uint `form:"sectionId"`
}

// Upload godoc
// @Summary Загрузить файл в общее хранилище
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Router /api/upload [post]
func (mgr *UploadMgr) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequestError(c, "Файл не найден")
		return
	}

	var form UploadForm
	_ = c.ShouldBind(&form)

	saved, err := mgr.uploads.Save(c, "files", fh)
	if err != nil {
		logutils.Log.Error("save upload: ", err)
		resputil.Error(c, "Ошибка загрузки файла")
		return
	}

	record := model.File{
		Name:         saved.StoredName,
		OriginalName: saved.OriginalName,
		Path:         saved.Path,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         saved.Size,
		ProjectID:    form.ProjectID,
		SectionID:    form.SectionID,
	}
	if err := mgr.db.Create(&record).Error; err != nil {
		logutils.Log.Error("persist upload record: ", err)
		resputil.Error(c, "Ошибка загрузки файла")
		return
	}

	resputil.Success(c, gin.H{"file": &record})
}
