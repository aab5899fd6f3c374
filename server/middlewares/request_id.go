package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/conf"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(RequestIDHeader, id)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), conf.RequestIDKey, id))
	c.Next()
	if len(c.Errors) > 0 {
		log.WithField("request_id", id).Warnf("%s %s: %s", c.Request.Method, c.Request.URL.Path, c.Errors.String())
	}
}
