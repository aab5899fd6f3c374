package handles

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/server/common"
)

type PageReq struct {
	Page    int `json:"page" form:"page"`
	PerPage int `json:"per_page" form:"per_page"`
}

const maxPerPage = 100

func (p *PageReq) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > maxPerPage {
		p.PerPage = 20
	}
}

func getUser(c *gin.Context) *model.User {
	user, _ := c.Request.Context().Value(conf.UserKey).(*model.User)
	return user
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.ErrorStrResp(c, "invalid id", 400)
		return 0, false
	}
	return uint(id), true
}

// errResp maps domain errors onto response codes; anything unknown is logged
// as a 500.
func errResp(c *gin.Context, err error) {
	cause := errors.Cause(err)
	switch {
	case errors.Is(cause, errs.ObjectNotFound):
		common.ErrorResp(c, err, 404)
	case errors.Is(cause, errs.PermissionDenied):
		common.ErrorResp(c, err, 403)
	case errors.Is(cause, errs.InvalidArgument), errors.Is(cause, errs.DuplicateTask), errors.Is(cause, errs.DuplicateApply):
		common.ErrorResp(c, err, 400)
	case errors.Is(cause, errs.InvalidToken):
		common.ErrorResp(c, err, 401)
	default:
		common.ErrorResp(c, err, 500, true)
	}
}
