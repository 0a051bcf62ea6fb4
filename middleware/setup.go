package middleware

import (
	"net/http"
	"os"

	"pistol/services/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetUpMiddleware installs the session cookie store and CORS policy.
// The cookie carrying the uid is http-only, same-site lax, signed with
// KEY, secure when PROD=true and lives for 30 days.
func SetUpMiddleware(r *gin.Engine) {
	key := os.Getenv("KEY")
	store := cookie.NewStore([]byte(key))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30, // 30 days
		HttpOnly: true,
		Secure:   os.Getenv("PROD") == "true",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(session.UserKey, store))

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	r.Use(cors.New(corsConfig))
}
