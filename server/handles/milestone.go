package handles

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/pkg/utils"
	"github.com/tunga-io/tunga/server/common"
)

// MilestoneResp reports the effective state, so an active milestone past its
// due date shows as overdue.
type MilestoneResp struct {
	*model.Milestone
	State        model.MilestoneState `json:"state"`
	StateDisplay string               `json:"state_display"`
	TypeDisplay  string               `json:"type_display"`
}

func toMilestoneResp(m *model.Milestone, now time.Time) MilestoneResp {
	state := m.EffectiveState(now)
	return MilestoneResp{
		Milestone:    m,
		State:        state,
		StateDisplay: state.String(),
		TypeDisplay:  m.Type.String(),
	}
}

func bindMilestoneInput(c *gin.Context) (op.MilestoneInput, bool) {
	var in op.MilestoneInput
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
	for k := range fields {
		in.Keys = append(in.Keys, k)
	}
	return in, true
}

func ListMilestones(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	ms, err := op.ListMilestones(c.Request.Context(), getUser(c), taskID)
	if err != nil {
		errResp(c, err)
		return
	}
	now := time.Now()
	content := make([]MilestoneResp, 0, len(ms))
	for i := range ms {
		content = append(content, toMilestoneResp(&ms[i], now))
	}
	common.SuccessResp(c, content)
}

func CreateMilestone(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	in, ok := bindMilestoneInput(c)
	if !ok {
		return
	}
	m, err := op.CreateMilestone(c.Request.Context(), getUser(c), taskID, in)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, toMilestoneResp(m, time.Now()))
}

func GetMilestone(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	m, err := op.GetMilestone(c.Request.Context(), getUser(c), id)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, toMilestoneResp(m, time.Now()))
}

func UpdateMilestone(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	in, ok := bindMilestoneInput(c)
	if !ok {
		return
	}
	m, err := op.UpdateMilestone(c.Request.Context(), getUser(c), id, in)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, toMilestoneResp(m, time.Now()))
}

func DeleteMilestone(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := op.DeleteMilestone(c.Request.Context(), getUser(c), id); err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c)
}
