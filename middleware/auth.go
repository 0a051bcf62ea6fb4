package middleware

import (
	"net/http"

	"pistol/services/session"

	"github.com/gin-gonic/gin"
)

// AuthRequired aborts with 401 unless the request carries a resolvable
// session. The resolved uid is stored on the context for handlers.
func AuthRequired(c *gin.Context) {
	uid, ok := session.Resolve(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.Set(session.UserKey, uid)
	c.Next()
}
