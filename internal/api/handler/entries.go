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

type entryRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

var entryMessages = binding.Messages{
	"Name": {
		"required": "Name is required",
	},
	"Email": {
		"required": "Invalid email address",
		"email":    "Invalid email address",
	},
}

// CreateEntry submits an email to the giveaway counter.
func (h *Handler) CreateEntry(c *gin.Context) {
	var req entryRequest
	if !binding.JSON(c, &req, entryMessages, "Invalid entry") {
		return
	}

	entry, err := h.storage.CreateEntry(c.Request.Context(), storage.NewEntry{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEntry) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "This email has already been used to enter the giveaway"})
			return
		}
		logError(c, "failed to create entry", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error submitting entry"})
		return
	}

	h.notify(c, "entry confirmation", func(n Notifier) error {
		return n.SendEntryConfirmation(email.EntryConfirmation{
			Name:      entry.Name,
			Email:     entry.Email,
			EnteredAt: entry.EnteredAt,
		})
	})

	c.JSON(http.StatusCreated, models.EntryResponse{
		Message: "Entry submitted successfully",
		Entry:   models.ToEntry(entry),
	})
}

// EntryCount returns the number of counter entries.
func (h *Handler) EntryCount(c *gin.Context) {
	count, err := h.storage.GetEntryCount(c.Request.Context())
	if err != nil {
		logError(c, "failed to count entries", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching entry count"})
		return
	}
	c.JSON(http.StatusOK, models.CountResponse{Count: count})
}

// UserCount returns the number of registered users.
func (h *Handler) UserCount(c *gin.Context) {
	count, err := h.storage.GetUserCount(c.Request.Context())
	if err != nil {
		logError(c, "failed to count users", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching user count"})
		return
	}
	c.JSON(http.StatusOK, models.CountResponse{Count: count})
}
