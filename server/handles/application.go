package handles

import (
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/server/common"
)

type ListApplicationReq struct {
	PageReq
	Responded *bool `json:"responded" form:"responded"`
}

func ListApplications(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	var req ListApplicationReq
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	req.Validate()
	apps, total, err := op.ListApplications(c.Request.Context(), getUser(c), taskID, req.Responded, req.Page, req.PerPage)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, common.PageResp{
		Content: apps,
		Total:   total,
	})
}

func CreateApplication(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	var in op.ApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	a, err := op.CreateApplication(c.Request.Context(), getUser(c), taskID, in)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, a)
}

func GetApplication(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	a, err := op.GetApplication(c.Request.Context(), getUser(c), id)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, a)
}

func UpdateApplication(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in op.ApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	a, err := op.UpdateApplication(c.Request.Context(), getUser(c), id, in)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, a)
}

func DeleteApplication(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := op.DeleteApplication(c.Request.Context(), getUser(c), id); err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c)
}
