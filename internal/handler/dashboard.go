package handler

import (
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
	Registers = append(Registers, NewDashboardMgr)
}

type DashboardMgr struct {
	name string
	db   *gorm.DB
}

func NewDashboardMgr(conf *RegisterConfig) Manager {
	return &DashboardMgr{name: "dashboard", db: conf.DB}
}

func (mgr *DashboardMgr) GetName() string { return mgr.name }

func (mgr *DashboardMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DashboardMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.GetDashboard)
}

func (mgr *DashboardMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// GetDashboard assembles the landing-page summary: bureau-wide counters
// plus role-specific work lists.
func (mgr *DashboardMgr) GetDashboard(c *gin.Context) {
	who := util.GetIdentity(c)

	var projects []model.Project
	err := mgr.db.Preload("Gip").Preload("Sections").
		Order("created_at DESC").Find(&projects).Error
	if err != nil {
		logutils.Log.Error("dashboard projects: ", err)
		resputil.Error(c, "Ошибка получения сводки")
		return
	}

	active := lo.Filter(projects, func(p model.Project, _ int) bool {
		return p.Status != model.ProjectArchived
	})

	totalSections := 0
	completedSections := 0
	for i := range active {
		totalSections += len(active[i].Sections)
		completedSections += lo.CountBy(active[i].Sections, func(s model.Section) bool {
			return s.Status == model.WorkCompleted
		})
	}

	var openRemarks int64
	if err := mgr.db.Model(&model.ExpertiseRemark{}).
		Where("status <> ?", model.RemarkClosed).Count(&openRemarks).Error; err != nil {
		logutils.Log.Error("dashboard remarks: ", err)
	}

	summary := gin.H{
		"projectsTotal":     len(projects),
		"projectsInWork":    lo.CountBy(projects, func(p model.Project) bool { return p.Status == model.ProjectInWork }),
		"projectsCompleted": lo.CountBy(projects, func(p model.Project) bool { return p.Status == model.ProjectCompleted }),
		"projectsArchived":  lo.CountBy(projects, func(p model.Project) bool { return p.Status == model.ProjectArchived }),
		"sectionsTotal":     totalSections,
		"sectionsCompleted": completedSections,
		"overallProgress":   model.ProgressOf(completedSections, totalSections),
		"openRemarks":       openRemarks,
		"recentProjects":    summaries(lo.Slice(active, 0, 10)),
	}

	switch who.Role {
	case model.RoleGip:
		mine := lo.Filter(active, func(p model.Project, _ int) bool {
			return p.GipID != nil && *p.GipID == who.UserID
		})
		summary["gipProjects"] = summaries(mine)
	case model.RoleEmployee:
		var sections []model.Section
		err := mgr.db.Preload("Project").
			Where("assignee_id = ?", who.UserID).
			Order("created_at DESC").Find(&sections).Error
		if err != nil {
			logutils.Log.Error("dashboard sections: ", err)
		}
		views := make([]gin.H, 0, len(sections))
		for i := range sections {
			view := sectionView(&sections[i])
			if p := sections[i].Project; p != nil {
				view["project"] = gin.H{"id": p.ID, "name": p.Name, "code": p.Code}
			}
			views = append(views, view)
		}
		summary["assignedSections"] = views
	case model.RoleAdmin:
		// Admin sees the bureau-wide counters only.
	}

	resputil.Success(c, gin.H{"dashboard": summary})
}

func summaries(projects []model.Project) []ProjectSummary {
	return lo.Map(projects, func(p model.Project, _ int) ProjectSummary {
		return summarize(&p)
	})
}
