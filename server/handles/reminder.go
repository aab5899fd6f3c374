package handles

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/server/common"
)

// SendReminders runs one due-sweep on demand. An optional "at" query value
// (RFC3339) moves the cutoff.
func SendReminders(c *gin.Context) {
	at := time.Now()
	if v := c.Query("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			common.ErrorStrResp(c, "at must be an RFC3339 timestamp", 400)
			return
		}
		at = t
	}
	res, err := op.SendDueReminders(c.Request.Context(), at)
	if err != nil {
		errResp(c, err)
		return
	}
	common.SuccessResp(c, res)
}
