package handles

import (
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/server/common"
)

func ListTaskUpdates(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	var req PageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	req.Validate()
	updates, total, err := op.ListTaskUpdates(c.Request.Context(), getUser(c), taskID, req.Page, req.PerPage)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, common.PageResp{
		Content: updates,
		Total:   total,
	})
}

func CreateTaskUpdate(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	var in op.TaskUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	u, err := op.CreateTaskUpdate(c.Request.Context(), getUser(c), taskID, in)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, u)
}
