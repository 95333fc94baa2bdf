package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
)

// AuditRecorder records mutating API requests after they complete. Writes are
// best-effort: an audit failure must never fail the request it describes.
func AuditRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		c.Header("X-Trace-Id", traceID)

		c.Next()

		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			return
		}

		var userID uint
		if v, ok := c.Get(ContextUserIDKey); ok {
			if id, ok := v.(uint); ok {
				userID = id
			}
		}

		_ = db.Create(&models.AuditEvent{
			TraceID: traceID,
			UserID:  userID,
			Method:  c.Request.Method,
			Path:    c.FullPath(),
			Status:  c.Writer.Status(),
		}).Error
	}
}
