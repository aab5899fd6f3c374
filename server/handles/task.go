package handles

import (
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/pkg/utils"
	"github.com/tunga-io/tunga/server/common"
)

type TaskResp struct {
	*model.Task
	DisplayFee            string               `json:"display_fee"`
	Excerpt               string               `json:"excerpt"`
	Summary               string               `json:"summary"`
	SkillList             []string             `json:"skill_list"`
	UpdateScheduleDisplay string               `json:"update_schedule_display"`
	Assignee              *model.Participation `json:"assignee"`
}

func toTaskResp(viewer *model.User, t *model.Task) TaskResp {
	fee := t.DisplayFee(nil)
	if viewer.IsDeveloper() {
		amount := t.DeveloperFee(conf.Conf.Share.PlatformPercentage)
		fee = t.DisplayFee(&amount)
	}
	return TaskResp{
		Task:                  t,
		DisplayFee:            fee,
		Excerpt:               t.Excerpt(),
		Summary:               t.Summary(),
		SkillList:             t.SkillList(),
		UpdateScheduleDisplay: t.UpdateScheduleDisplay(),
		Assignee:              op.Assignee(t.Participation),
	}
}

type ListTaskReq struct {
	PageReq
	Search string `form:"search"`
	Closed *bool  `form:"closed"`
	Owner  uint   `form:"owner"`
}

func ListTasks(c *gin.Context) {
	var req ListTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	req.Validate()
	user := getUser(c)
	tasks, total, err := op.ListTasks(c.Request.Context(), user, db.TaskFilter{
		Search:  req.Search,
		Closed:  req.Closed,
		OwnerID: req.Owner,
	}, req.Page, req.PerPage)
	if err != nil {
		errResp(c, err)
		return
	}
	content := make([]TaskResp, 0, len(tasks))
	for i := range tasks {
		content = append(content, toTaskResp(user, &tasks[i]))
	}
	common.SuccessResp(c, common.PageResp{
		Content: content,
		Total:   total,
	})
}

func GetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user := getUser(c)
	task, err := op.GetTask(c.Request.Context(), user, id)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, toTaskResp(user, task))
}

// bindTaskInput decodes the body twice: once for the values and once for the
// set of keys present, so explicit nulls can clear a field.
func bindTaskInput(c *gin.Context) (op.TaskInput, bool) {
	var in op.TaskInput
	raw, err := c.GetRawData()
	if err != nil {
		common.ErrorResp(c, err, 400)
		return in, false
	}
	var fields map[string]interface{}
	if err = utils.Json.Unmarshal(raw, &fields); err != nil {
		common.ErrorStrResp(c, "request body must be a JSON object", 400)
		return in, false
	}
	if err = utils.Json.Unmarshal(raw, &in); err != nil {
		common.ErrorResp(c, err, 400)
		return in, false
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	in.Keys = op.TaskKeys(keys)
	return in, true
}

func CreateTask(c *gin.Context) {
	in, ok := bindTaskInput(c)
	if !ok {
		return
	}
	user := getUser(c)
	task, err := op.CreateTask(c.Request.Context(), user, in)
	if err != nil {
		errResp(c, err)
		return
	}
	task.Participation, _ = db.GetParticipations(c.Request.Context(), task.ID)
	common.SuccessResp(c, toTaskResp(user, task))
}

func UpdateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	in, ok := bindTaskInput(c)
	if !ok {
		return
	}
	user := getUser(c)
	task, err := op.UpdateTask(c.Request.Context(), user, id, in)
	if err != nil {
		errResp(c, err)
		return
	}
	task.Participation, _ = db.GetParticipations(c.Request.Context(), task.ID)
	common.SuccessResp(c, toTaskResp(user, task))
}

func DeleteTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := op.DeleteTask(c.Request.Context(), getUser(c), id); err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c)
}

func GetTaskMeta(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	meta, err := op.GetTaskMeta(c.Request.Context(), getUser(c), id, common.GetApiUrl(c.Request))
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, meta)
}
