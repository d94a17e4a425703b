package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/storage"
)

// RequireAuth loads the session user or aborts with 401.
func (p *Provider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserID).(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authenticated"})
			return
		}

		user, err := p.storage.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Warn("Session references unknown user", "user_id", userID)
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authenticated"})
				return
			}
			log.Error("failed to load session user", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error checking authentication"})
			return
		}

		c.Set(sessionUserID, user.ID)
		c.Set(contextUser, user)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the user loaded by RequireAuth is an admin.
func (p *Provider) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.Get(contextUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authenticated"})
			return
		}
		if u, ok := user.(*storage.User); !ok || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Message: "Not authorized"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireAuth.
func CurrentUser(c *gin.Context) *storage.User {
	return c.MustGet(contextUser).(*storage.User)
}
