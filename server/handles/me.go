package handles

import (
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/server/common"
)

func GetMe(c *gin.Context) {
	common.SuccessResp(c, getUser(c))
}
