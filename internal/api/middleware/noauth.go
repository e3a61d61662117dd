package middleware

import (
	"github.com/gin-gonic/gin"
)

// AnonymousUserID owns all review progress when AUTH_MODE=none
const AnonymousUserID = "anonymous"

// NoAuth is a pass-through middleware for AUTH_MODE=none.
// Every caller shares the anonymous user's review schedule.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id_str", AnonymousUserID)
		c.Next()
	}
}
