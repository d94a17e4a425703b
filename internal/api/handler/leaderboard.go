package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/binding"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/notify/email"
	"github.com/pubzy/giveaways/internal/storage"
)

type leaderboardRequest struct {
	Username string `json:"username" binding:"required"`
	Giveaway string `json:"giveaway" binding:"required"`
	Prize    string `json:"prize" binding:"required"`
}

// Leaderboard returns all wins, newest first.
func (h *Handler) Leaderboard(c *gin.Context) {
	entries, err := h.storage.GetLeaderboard(c.Request.Context())
	if err != nil {
		logError(c, "failed to get leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching leaderboard"})
		return
	}
	c.JSON(http.StatusOK, models.ToLeaderboard(entries))
}

// AddLeaderboardEntry records a win and emails the winner when they have an account.
func (h *Handler) AddLeaderboardEntry(c *gin.Context) {
	var req leaderboardRequest
	if !binding.JSON(c, &req, nil, "Username, giveaway and prize are required") {
		return
	}
	ctx := c.Request.Context()

	entry, err := h.storage.AddLeaderboardEntry(ctx, storage.NewLeaderboardEntry{
		Username: req.Username,
		Giveaway: req.Giveaway,
		Prize:    req.Prize,
	})
	if err != nil {
		logError(c, "failed to add leaderboard entry", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error adding leaderboard entry"})
		return
	}

	if h.notifier != nil {
		winner, err := h.storage.GetUserByUsername(ctx, entry.Username)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			logError(c, "failed to look up winner", "username", entry.Username, "error", err)
		case winner.Email != "":
			h.notify(c, "winner notification", func(n Notifier) error {
				return n.SendWinnerNotification(email.WinnerNotification{
					Username: winner.Username,
					Email:    winner.Email,
					Giveaway: entry.Giveaway,
					Prize:    entry.Prize,
				})
			})
		}
	}

	c.JSON(http.StatusCreated, models.ToLeaderboardEntry(*entry))
}
