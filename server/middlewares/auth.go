package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/server/common"
)

// Auth resolves the bearer token to a user and stores it in the request
// context.
func Auth(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if token == "" {
		common.ErrorStrResp(c, "authentication credentials were not provided", 401)
		return
	}
	claims, err := common.ParseToken(token)
	if err != nil {
		common.ErrorResp(c, err, 401)
		return
	}
	user, err := db.GetUserByName(claims.Username)
	if err != nil {
		common.ErrorResp(c, err, 401)
		return
	}
	SetUser(c, user)
	c.Next()
}

func SetUser(c *gin.Context, user *model.User) {
	c.Set("user", user)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), conf.UserKey, user))
}

func AuthAdmin(c *gin.Context) {
	user, _ := c.Request.Context().Value(conf.UserKey).(*model.User)
	if !user.IsAdmin() {
		common.ErrorStrResp(c, "You are not an admin", 403)
		return
	}
	c.Next()
}
