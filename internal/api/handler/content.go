package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/models"
)

// Updates returns the news posts, newest first.
func (h *Handler) Updates(c *gin.Context) {
	updates, err := h.storage.ListUpdates(c.Request.Context())
	if err != nil {
		logError(c, "failed to list updates", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching updates"})
		return
	}
	c.JSON(http.StatusOK, models.ToUpdates(updates))
}

// Videos returns the synced uploads, newest first.
func (h *Handler) Videos(c *gin.Context) {
	videos, err := h.storage.ListVideos(c.Request.Context())
	if err != nil {
		logError(c, "failed to list videos", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching videos"})
		return
	}
	c.JSON(http.StatusOK, models.ToVideos(videos))
}
