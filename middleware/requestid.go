package middleware

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags each request with an ID, reusing a client-supplied one, and
// attaches a logger carrying it to the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		entry := log.WithField(ContextRequestID, id)
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), entry))
		c.Next()
	}
}
