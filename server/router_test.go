package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/pkg/utils"
	"github.com/tunga-io/tunga/server/common"
)

type apiFixture struct {
	engine                        *gin.Engine
	owner, ada, stranger, staff   *model.User
	ownerTok, adaTok, strangerTok string
	staffTok                      string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conf.Conf = conf.DefaultConfig(t.TempDir())
	conf.Conf.JwtSecret = "test-secret"
	conf.Conf.Reminder.Delay = 0

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	db.Init(dB)
	t.Cleanup(db.Close)

	f := &apiFixture{
		owner:    &model.User{Username: "owner", FirstName: "Olu", Email: "owner@example.com", Type: model.UserTypeProjectOwner},
		ada:      &model.User{Username: "ada", FirstName: "Ada", Email: "ada@example.com", Type: model.UserTypeDeveloper},
		stranger: &model.User{Username: "stranger", Email: "s@example.com", Type: model.UserTypeProjectOwner},
		staff:    &model.User{Username: "staff", Email: "staff@example.com", IsStaff: true},
	}
	for _, u := range []*model.User{f.owner, f.ada, f.stranger, f.staff} {
		require.NoError(t, db.CreateUser(u))
	}
	token := func(u *model.User) string {
		tok, err := common.GenerateToken(u)
		require.NoError(t, err)
		return tok
	}
	f.ownerTok, f.adaTok, f.strangerTok, f.staffTok = token(f.owner), token(f.ada), token(f.stranger), token(f.staff)

	f.engine = gin.New()
	Init(f.engine)
	return f
}

func do[T any](t *testing.T, f *apiFixture, method, path, tok string, body interface{}) common.Resp[T] {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, utils.Json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp common.Resp[T]
	require.NoError(t, utils.Json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type taskView struct {
	ID            uint                  `json:"id"`
	Title         string                `json:"title"`
	DisplayFee    string                `json:"display_fee"`
	Summary       string                `json:"summary"`
	Participation []model.Participation `json:"participation"`
}

type milestoneView struct {
	ID           uint                 `json:"id"`
	Title        string               `json:"title"`
	Order        int16                `json:"order"`
	State        model.MilestoneState `json:"state"`
	StateDisplay string               `json:"state_display"`
}

func (f *apiFixture) createTask(t *testing.T) taskView {
	t.Helper()
	resp := do[taskView](t, f, "POST", "/api/task", f.ownerTok, map[string]interface{}{
		"title":        "Build API",
		"fee":          100,
		"participants": []uint{f.ada.ID},
	})
	require.Equal(t, 200, resp.Code, resp.Message)
	return resp.Data
}

func TestPing(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, "pong", w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	f := newAPI(t)
	assert.Equal(t, 401, do[interface{}](t, f, "GET", "/api/me", "", nil).Code)
	assert.Equal(t, 401, do[interface{}](t, f, "GET", "/api/me", "garbage", nil).Code)

	me := do[model.User](t, f, "GET", "/api/me", f.adaTok, nil)
	assert.Equal(t, 200, me.Code)
	assert.Equal(t, "ada", me.Data.Username)
}

func TestTaskLifecycle(t *testing.T) {
	f := newAPI(t)
	task := f.createTask(t)
	assert.Equal(t, "€100", task.DisplayFee)
	assert.Equal(t, "Build API - Fee: €100", task.Summary)
	require.Len(t, task.Participation, 1)
	assert.Equal(t, f.ada.ID, task.Participation[0].UserID)

	path := "/api/task/" + fmt.Sprint(task.ID)
	asDev := do[taskView](t, f, "GET", path, f.adaTok, nil)
	require.Equal(t, 200, asDev.Code)
	assert.Equal(t, "€90", asDev.Data.DisplayFee)

	assert.Equal(t, 404, do[interface{}](t, f, "GET", path, f.strangerTok, nil).Code)
	assert.Equal(t, 403, do[interface{}](t, f, "PATCH", path, f.adaTok, map[string]string{"title": "Mine"}).Code)

	updated := do[taskView](t, f, "PATCH", path, f.ownerTok, map[string]string{"title": "Build API v2"})
	require.Equal(t, 200, updated.Code, updated.Message)
	assert.Equal(t, "Build API v2", updated.Data.Title)

	bad := do[interface{}](t, f, "PATCH", path, f.ownerTok, map[string]int{"fee": -1})
	assert.Equal(t, 400, bad.Code)

	list := do[struct {
		Content []taskView `json:"content"`
		Total   int64      `json:"total"`
	}](t, f, "GET", "/api/task", f.ownerTok, nil)
	require.Equal(t, 200, list.Code)
	assert.EqualValues(t, 1, list.Data.Total)

	assert.Equal(t, 403, do[interface{}](t, f, "DELETE", path, f.adaTok, nil).Code)
	assert.Equal(t, 200, do[interface{}](t, f, "DELETE", path, f.ownerTok, nil).Code)
	assert.Equal(t, 404, do[interface{}](t, f, "GET", path, f.ownerTok, nil).Code)
}

func TestMilestoneRoutes(t *testing.T) {
	f := newAPI(t)
	task := f.createTask(t)
	path := "/api/task/" + fmt.Sprint(task.ID) + "/milestones"

	list := do[[]milestoneView](t, f, "GET", path, f.adaTok, nil)
	require.Equal(t, 200, list.Code)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Task Created", list.Data[0].Title)
	assert.Equal(t, "Dev(s) Selected", list.Data[1].Title)

	created := do[milestoneView](t, f, "POST", path, f.ownerTok, map[string]interface{}{
		"title":    "Beta",
		"order":    5,
		"due_date": "2000-01-01T00:00:00Z",
	})
	require.Equal(t, 200, created.Code, created.Message)
	assert.Equal(t, model.MilestoneOverdue, created.Data.State)
	assert.Equal(t, "overdue", created.Data.StateDisplay)

	one := "/api/milestone/" + fmt.Sprint(created.Data.ID)
	assert.Equal(t, 400, do[interface{}](t, f, "PUT", one, f.ownerTok, map[string]int{"state": int(model.MilestoneOverdue)}).Code)
	assert.Equal(t, 403, do[interface{}](t, f, "PUT", one, f.adaTok, map[string]string{"title": "Gamma"}).Code)

	renamed := do[milestoneView](t, f, "PUT", one, f.ownerTok, map[string]string{"title": "Gamma"})
	require.Equal(t, 200, renamed.Code, renamed.Message)
	assert.Equal(t, "Gamma", renamed.Data.Title)

	start := "/api/milestone/" + fmt.Sprint(list.Data[0].ID)
	assert.Equal(t, 400, do[interface{}](t, f, "DELETE", start, f.ownerTok, nil).Code)
	assert.Equal(t, 200, do[interface{}](t, f, "DELETE", one, f.ownerTok, nil).Code)
	assert.Equal(t, 404, do[interface{}](t, f, "GET", one, f.ownerTok, nil).Code)
}

func TestTaskUpdateRoutes(t *testing.T) {
	f := newAPI(t)
	task := f.createTask(t)
	path := "/api/task/" + fmt.Sprint(task.ID) + "/updates"

	created := do[model.TaskUpdate](t, f, "POST", path, f.adaTok, map[string]interface{}{
		"accomplished":    "schema",
		"percentage_done": 40,
	})
	require.Equal(t, 200, created.Code, created.Message)
	assert.Equal(t, f.ada.ID, created.Data.UserID)

	assert.Equal(t, 400, do[interface{}](t, f, "POST", path, f.adaTok, map[string]int{"percentage_done": 140}).Code)
	assert.Equal(t, 404, do[interface{}](t, f, "POST", path, f.strangerTok, map[string]string{"accomplished": "x"}).Code)

	list := do[struct {
		Content []model.TaskUpdate `json:"content"`
		Total   int64              `json:"total"`
	}](t, f, "GET", path, f.ownerTok, nil)
	require.Equal(t, 200, list.Code)
	assert.EqualValues(t, 1, list.Data.Total)
}

func TestApplicationRoutes(t *testing.T) {
	f := newAPI(t)
	task := f.createTask(t)
	path := "/api/task/" + fmt.Sprint(task.ID) + "/applications"
	body := map[string]interface{}{
		"pitch":           "I have shipped this before",
		"hours_needed":    30,
		"hours_available": 20,
		"deliver_at":      "2016-07-01T12:00:00Z",
	}

	assert.Equal(t, 403, do[interface{}](t, f, "POST", path, f.ownerTok, body).Code)
	assert.Equal(t, 404, do[interface{}](t, f, "POST", path, f.strangerTok, body).Code)
	assert.Equal(t, 400, do[interface{}](t, f, "POST", path, f.adaTok, map[string]string{"pitch": "x"}).Code)

	created := do[model.Application](t, f, "POST", path, f.adaTok, body)
	require.Equal(t, 200, created.Code, created.Message)
	assert.Equal(t, f.ada.ID, created.Data.UserID)
	assert.Equal(t, 400, do[interface{}](t, f, "POST", path, f.adaTok, body).Code)

	list := do[struct {
		Content []model.Application `json:"content"`
		Total   int64               `json:"total"`
	}](t, f, "GET", path+"?responded=false", f.ownerTok, nil)
	require.Equal(t, 200, list.Code, list.Message)
	assert.EqualValues(t, 1, list.Data.Total)

	item := "/api/application/" + fmt.Sprint(created.Data.ID)
	assert.Equal(t, 404, do[interface{}](t, f, "GET", item, f.strangerTok, nil).Code)
	assert.Equal(t, 403, do[interface{}](t, f, "PATCH", item, f.adaTok, map[string]bool{"accepted": true}).Code)

	accepted := do[model.Application](t, f, "PATCH", item, f.ownerTok, map[string]bool{"accepted": true})
	require.Equal(t, 200, accepted.Code, accepted.Message)
	assert.True(t, accepted.Data.Accepted)
	assert.True(t, accepted.Data.Responded)

	assert.Equal(t, 403, do[interface{}](t, f, "DELETE", item, f.ownerTok, nil).Code)
	assert.Equal(t, 200, do[interface{}](t, f, "DELETE", item, f.adaTok, nil).Code)
	assert.Equal(t, 404, do[interface{}](t, f, "GET", item, f.staffTok, nil).Code)
}

func TestTaskMetaRoute(t *testing.T) {
	f := newAPI(t)
	task := f.createTask(t)
	resp := do[op.TaskMeta](t, f, "GET", "/api/task/"+fmt.Sprint(task.ID)+"/meta", f.ownerTok, nil)
	require.Equal(t, 200, resp.Code, resp.Message)
	assert.Equal(t, task.ID, resp.Data.Task)
	assert.Contains(t, resp.Data.Participation, `"type":"payment"`)
	assert.Contains(t, resp.Data.Payment, `"amount":100`)
}

func TestAdminRoutes(t *testing.T) {
	f := newAPI(t)
	f.createTask(t)
	assert.Equal(t, 403, do[interface{}](t, f, "POST", "/api/admin/reminders/send", f.ownerTok, nil).Code)

	res := do[op.SweepResult](t, f, "POST", "/api/admin/reminders/send", f.staffTok, nil)
	require.Equal(t, 200, res.Code, res.Message)
	assert.Equal(t, 1, res.Data.Due)
	assert.Equal(t, 1, res.Data.Sent)
	assert.Zero(t, res.Data.Failed)

	again := do[op.SweepResult](t, f, "POST", "/api/admin/reminders/send", f.staffTok, nil)
	assert.Zero(t, again.Data.Due)

	assert.Equal(t, 400, do[interface{}](t, f, "POST", "/api/admin/reminders/send?at=yesterday", f.staffTok, nil).Code)
}
