package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
)

const adminKeyHeader = "X-Admin-Key"

// AdminMiddleware gates catalog administration behind a deploy-time shared
// key (ADMIN_API_KEY). The schema has no role model, so an authenticated
// session alone never grants write access to the catalog.
type AdminMiddleware struct {
	log *logger.Logger
	key string
}

func NewAdminMiddleware(log *logger.Logger, key string) *AdminMiddleware {
	return &AdminMiddleware{
		log: log.With("middleware", "AdminMiddleware"),
		key: key,
	}
}

// RequireAdminKey rejects every request when no key is configured: admin
// routes fail closed rather than falling open.
func (am *AdminMiddleware) RequireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(adminKeyHeader)
		if am.key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(am.key)) != 1 {
			am.log.Warn("admin route refused", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
