package common

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// The external identity provider authenticates users and stores their
// stable identifier in the session under "user_id". The core only ever
// reads it back; it never issues or verifies credentials.

const userIDKey = "user_id"

// RequireUser aborts with 401 unless an authenticated principal is
// present in the session, and exposes the user id on the gin context.
func RequireUser(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(userIDKey)

	if userID == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// CurrentUserID returns the authenticated user's id, if any. Usable on
// routes that are public but behave differently for the owner.
func CurrentUserID(c *gin.Context) (int, bool) {
	if id, exists := c.Get(userIDKey); exists {
		if v, ok := id.(int); ok {
			return v, true
		}
	}

	session := sessions.Default(c)
	if id := session.Get(userIDKey); id != nil {
		if v, ok := id.(int); ok {
			return v, true
		}
	}
	return 0, false
}

// RequireAjax rejects non-XHR requests. The search and image endpoints
// are only ever called from the navbar and the editor.
func RequireAjax(c *gin.Context) {
	if c.GetHeader("X-Requested-With") != "XMLHttpRequest" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Bad Request"})
		return
	}
	c.Next()
}
