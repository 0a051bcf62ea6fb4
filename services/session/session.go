// Package session associates requests with a uid through the signed
// session cookie. There is no server-side session table: the cookie is
// the session.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// UserKey is the session key (and cookie name) carrying the uid.
const UserKey = "userId"

// Issue stores the uid in the request's session cookie.
func Issue(c *gin.Context, uid uint) error {
	s := sessions.Default(c)
	s.Set(UserKey, uid)
	return s.Save()
}

// Resolve extracts the uid from the session cookie. The second return is
// false when no valid session is present.
func Resolve(c *gin.Context) (uint, bool) {
	s := sessions.Default(c)
	value := s.Get(UserKey)
	if value == nil {
		return 0, false
	}
	switch uid := value.(type) {
	case uint:
		return uid, true
	case int:
		if uid < 0 {
			return 0, false
		}
		return uint(uid), true
	case int64:
		if uid < 0 {
			return 0, false
		}
		return uint(uid), true
	default:
		return 0, false
	}
}

// Clear removes the session cookie.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(UserKey)
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}
