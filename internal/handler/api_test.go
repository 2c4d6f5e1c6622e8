package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/dao/query"
	"github.com/projectbureau/bureau-backend/internal"
	"github.com/projectbureau/bureau-backend/internal/handler"
	"github.com/projectbureau/bureau-backend/internal/util"
	"github.com/projectbureau/bureau-backend/pkg/uploads"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	tokenMgr *util.TokenManager

	admin model.User
	gip   model.User
	emp   model.User
}

func testDSN() string {
	if dsn := os.Getenv("BUREAU_TEST_DSN"); dsn != "" {
		return dsn
	}
	return "host=localhost user=postgres password=postgres dbname=bureau_test port=5432 sslmode=disable"
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(postgres.Open(testDSN()), &gorm.Config{})
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	tables := []any{
		&model.RemarkComment{}, &model.ExpertiseRemark{}, &model.Expertise{},
		&model.Message{}, &model.IntroBlock{}, &model.Investigation{},
		&model.Contact{}, &model.File{}, &model.Section{}, &model.Project{},
		&model.StandardInvestigation{}, &model.StandardSection{}, &model.User{},
	}
	if err := db.Migrator().DropTable(tables...); err != nil {
		t.Fatalf("drop tables: %v", err)
	}
	if err := query.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokenMgr := util.NewTokenManager("test-secret", time.Hour)
	backend := internal.Register(&handler.RegisterConfig{
		DB:       db,
		TokenMgr: tokenMgr,
		Uploads:  uploads.NewStore(t.TempDir()),
	})

	env := &testEnv{router: backend.R, db: db, tokenMgr: tokenMgr}
	env.admin = env.seedUser(t, "admin@test.com", "Админ", model.RoleAdmin)
	env.gip = env.seedUser(t, "gip@test.com", "Мария ГИП", model.RoleGip)
	env.emp = env.seedUser(t, "emp@test.com", "Иван Инженер", model.RoleEmployee)
	return env
}

func (env *testEnv) seedUser(t *testing.T, email, name string, role model.Role) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Email: email, Password: string(hash), Name: name, Role: role}
	require.NoError(t, env.db.Create(&user).Error)
	return user
}

func (env *testEnv) bearerFor(t *testing.T, u model.User) string {
	t.Helper()
	token, err := env.tokenMgr.CreateToken(&u)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r http.Handler, method, path string, form url.Values, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorText(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["error"], &msg))
	return msg
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "GIP@test.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), "auth_token=")

	var user model.User
	require.NoError(t, json.Unmarshal(body["user"], &user))
	assert.Equal(t, "gip@test.com", user.Email)
	assert.Equal(t, model.RoleGip, user.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupTestEnv(t)

	wrongPass := doJSON(t, env.router, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "gip@test.com", "password": "nope"}, "")
	unknown := doJSON(t, env.router, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "ghost@test.com", "password": "nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, errorText(t, wrongPass), errorText(t, unknown))
}

func TestArchivedUserRejected(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.db.Model(&env.emp).Update("is_archived", true).Error)

	login := doJSON(t, env.router, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "emp@test.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusForbidden, login.Code)

	// A token issued before archival stops working as well.
	me := doJSON(t, env.router, http.MethodGet, "/api/auth/me", nil, env.bearerFor(t, env.emp))
	assert.Equal(t, http.StatusForbidden, me.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := setupTestEnv(t)

	forbidden := doJSON(t, env.router, http.MethodGet, "/api/users", nil, env.bearerFor(t, env.emp))
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	ok := doJSON(t, env.router, http.MethodGet, "/api/users", nil, env.bearerFor(t, env.admin))
	assert.Equal(t, http.StatusOK, ok.Code)

	anon := doJSON(t, env.router, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
}

func TestProjectLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	gipAuth := env.bearerFor(t, env.gip)

	w := doJSON(t, env.router, http.MethodPost, "/api/projects", map[string]any{
		"name": "Жилой дом на Лесной",
		"code": "2025-017",
		"sections": []map[string]any{
			{"code": "АР", "assigneeId": env.emp.ID},
			{"code": "КР"},
		},
	}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var project struct {
		ID       uint `json:"id"`
		GipID    uint `json:"gipId"`
		Sections []struct {
			ID   uint   `json:"id"`
			Code string `json:"code"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["project"], &project))
	assert.Equal(t, env.gip.ID, project.GipID, "a GIP creating without gipId owns the project")
	require.Len(t, project.Sections, 2)

	// The assignee completes their section.
	ar := project.Sections[0]
	if ar.Code != "АР" {
		ar = project.Sections[1]
	}
	require.Equal(t, "АР", ar.Code)
	upd := doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/sections/%d", ar.ID),
		map[string]any{"status": "completed"}, env.bearerFor(t, env.emp))
	require.Equal(t, http.StatusOK, upd.Code, upd.Body.String())

	var section struct {
		Status      string     `json:"status"`
		CompletedAt *time.Time `json:"completedAt"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, upd)["section"], &section))
	assert.Equal(t, "completed", section.Status)
	assert.NotNil(t, section.CompletedAt)

	detail := doJSON(t, env.router, http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID), nil, gipAuth)
	require.Equal(t, http.StatusOK, detail.Code)

	var got struct {
		Progress          int `json:"progress"`
		SectionsCompleted int `json:"sectionsCompleted"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, detail)["project"], &got))
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, 1, got.SectionsCompleted)
}

func TestSectionAccessControl(t *testing.T) {
	env := setupTestEnv(t)
	gipAuth := env.bearerFor(t, env.gip)

	w := doJSON(t, env.router, http.MethodPost, "/api/projects", map[string]any{
		"name":     "Школа",
		"sections": []map[string]any{{"code": "ОВ"}},
	}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code)

	var project struct {
		Sections []struct {
			ID uint `json:"id"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["project"], &project))
	sectionID := project.Sections[0].ID

	// The section has no assignee, so the employee is a stranger to it.
	forbidden := doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/sections/%d", sectionID),
		map[string]any{"description": "попытка"}, env.bearerFor(t, env.emp))
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	// A missing section reports 404 before any rights check.
	missing := doJSON(t, env.router, http.MethodPut, "/api/sections/99999",
		map[string]any{"description": "x"}, env.bearerFor(t, env.emp))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	// Creating a section is for the project owner, not employees.
	created := doJSON(t, env.router, http.MethodPost, "/api/sections",
		map[string]any{"projectId": 1, "code": "ВК"}, env.bearerFor(t, env.emp))
	assert.Equal(t, http.StatusForbidden, created.Code)
}

func TestRemarkWorkflow(t *testing.T) {
	env := setupTestEnv(t)
	gipAuth := env.bearerFor(t, env.gip)

	w := doJSON(t, env.router, http.MethodPost, "/api/projects",
		map[string]any{"name": "Поликлиника", "expertise": "state"}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["project"], &project))

	w = doJSON(t, env.router, http.MethodPost, "/api/expertises",
		map[string]any{"projectId": project.ID, "stageName": "Госэкспертиза"}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var expertise struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["expertise"], &expertise))

	w = doForm(t, env.router, http.MethodPost, fmt.Sprintf("/api/expertises/%d/remarks", expertise.ID),
		url.Values{"content": {"Уточнить расчёт нагрузок"}, "number": {"1.2"}}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var remark struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["remark"], &remark))
	assert.Equal(t, "open", remark.Status)

	// Closing before any response is rejected.
	closed := doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/remarks/%d", remark.ID),
		map[string]any{"status": "closed"}, gipAuth)
	assert.Equal(t, http.StatusBadRequest, closed.Code)

	w = doForm(t, env.router, http.MethodPost, fmt.Sprintf("/api/remarks/%d/response", remark.ID),
		url.Values{"content": {"Расчёт приложен, см. том 2"}}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var responded struct {
		Status      string `json:"status"`
		RespondedBy *uint  `json:"respondedBy"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["remark"], &responded))
	assert.Equal(t, "responded", responded.Status)
	require.NotNil(t, responded.RespondedBy)
	assert.Equal(t, env.gip.ID, *responded.RespondedBy)

	closed = doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/remarks/%d", remark.ID),
		map[string]any{"status": "closed"}, gipAuth)
	require.Equal(t, http.StatusOK, closed.Code)
	var final struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, closed)["remark"], &final))
	assert.Equal(t, "closed", final.Status)

	// Closing is final.
	reopened := doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/remarks/%d", remark.ID),
		map[string]any{"status": "open"}, gipAuth)
	assert.Equal(t, http.StatusBadRequest, reopened.Code)
}

func TestRemarkMutationIsProjectLevel(t *testing.T) {
	env := setupTestEnv(t)
	gipAuth := env.bearerFor(t, env.gip)

	w := doJSON(t, env.router, http.MethodPost, "/api/projects", map[string]any{
		"name":     "Склад",
		"sections": []map[string]any{{"code": "КР", "assigneeId": env.emp.ID}},
	}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code)
	var project struct {
		ID       uint `json:"id"`
		Sections []struct {
			ID uint `json:"id"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["project"], &project))

	w = doJSON(t, env.router, http.MethodPost, "/api/expertises",
		map[string]any{"projectId": project.ID}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code)
	var expertise struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["expertise"], &expertise))

	w = doForm(t, env.router, http.MethodPost, fmt.Sprintf("/api/expertises/%d/remarks", expertise.ID),
		url.Values{
			"content":   {"Добавить узлы крепления"},
			"sectionId": {fmt.Sprint(project.Sections[0].ID)},
		}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var remark struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["remark"], &remark))

	// The tagged section's assignee edits the section, not the remark:
	// no status change, no official response.
	empAuth := env.bearerFor(t, env.emp)
	upd := doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/api/remarks/%d", remark.ID),
		map[string]any{"status": "closed"}, empAuth)
	assert.Equal(t, http.StatusForbidden, upd.Code)

	resp := doForm(t, env.router, http.MethodPost, fmt.Sprintf("/api/remarks/%d/response", remark.ID),
		url.Values{"content": {"сделано"}}, empAuth)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Commenting stays open to everyone on the project.
	comment := doJSON(t, env.router, http.MethodPost, fmt.Sprintf("/api/remarks/%d/comments", remark.ID),
		map[string]any{"content": "Уточните марку стали"}, empAuth)
	assert.Equal(t, http.StatusOK, comment.Code)
}

func TestDashboard(t *testing.T) {
	env := setupTestEnv(t)
	gipAuth := env.bearerFor(t, env.gip)

	w := doJSON(t, env.router, http.MethodPost, "/api/projects", map[string]any{
		"name":     "Детский сад",
		"sections": []map[string]any{{"code": "АР"}, {"code": "КР"}},
	}, gipAuth)
	require.Equal(t, http.StatusOK, w.Code)

	dash := doJSON(t, env.router, http.MethodGet, "/api/dashboard", nil, gipAuth)
	require.Equal(t, http.StatusOK, dash.Code)

	var summary struct {
		ProjectsTotal   int               `json:"projectsTotal"`
		SectionsTotal   int               `json:"sectionsTotal"`
		OverallProgress int               `json:"overallProgress"`
		GipProjects     []json.RawMessage `json:"gipProjects"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, dash)["dashboard"], &summary))
	assert.Equal(t, 1, summary.ProjectsTotal)
	assert.Equal(t, 2, summary.SectionsTotal)
	assert.Equal(t, 0, summary.OverallProgress)
	assert.Len(t, summary.GipProjects, 1)
}
