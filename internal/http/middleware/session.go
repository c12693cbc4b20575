package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reservation_insight/backend/internal/session"
)

const sessionKey = "insight_session"

// Session attaches the caller's session, issuing a cookie when the caller
// has none or the old one was evicted.
func Session(reg *session.Registry, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		sess, created := reg.Get(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by Session, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
