package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/auth"
	"github.com/pubzy/giveaways/internal/api/binding"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/storage"
)

type createGiveawayRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Prize       string `json:"prize" binding:"required"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	MaxEntries  int    `json:"maxEntries" binding:"gte=0"`
	EndDate     string `json:"endDate"`
}

type updateGiveawayRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Prize       *string `json:"prize" binding:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl"`
	MaxEntries  *int    `json:"maxEntries" binding:"omitempty,gte=0"`
	EndDate     *string `json:"endDate"`
	IsActive    *bool   `json:"isActive"`
}

var giveawayMessages = binding.Messages{
	"Title": {
		"required": "Title is required",
		"min":      "Title is required",
	},
	"Prize": {
		"required": "Prize is required",
		"min":      "Prize is required",
	},
	"ImageURL": {
		"url": "Image URL must be a valid URL",
	},
	"MaxEntries": {
		"gte": "Max entries must not be negative",
	},
}

// ListGiveaways returns the active giveaways.
func (h *Handler) ListGiveaways(c *gin.Context) {
	h.listGiveaways(c, true)
}

// ListAllGiveaways returns every giveaway including deactivated ones.
func (h *Handler) ListAllGiveaways(c *gin.Context) {
	h.listGiveaways(c, false)
}

func (h *Handler) listGiveaways(c *gin.Context, activeOnly bool) {
	giveaways, err := h.storage.ListGiveaways(c.Request.Context(), activeOnly)
	if err != nil {
		logError(c, "failed to list giveaways", "active_only", activeOnly, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching giveaways"})
		return
	}
	c.JSON(http.StatusOK, models.ToGiveaways(giveaways))
}

// GetGiveaway returns a single giveaway by id.
func (h *Handler) GetGiveaway(c *gin.Context) {
	id := c.Param("id")
	giveaway, err := h.storage.GetGiveaway(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Giveaway not found"})
			return
		}
		logError(c, "failed to get giveaway", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching giveaway"})
		return
	}
	c.JSON(http.StatusOK, models.ToGiveaway(*giveaway))
}

// CreateGiveaway adds an active giveaway.
func (h *Handler) CreateGiveaway(c *gin.Context) {
	var req createGiveawayRequest
	if !binding.JSON(c, &req, giveawayMessages, "Invalid giveaway data") {
		return
	}

	giveaway, err := h.storage.CreateGiveaway(c.Request.Context(), storage.NewGiveaway{
		Title:       req.Title,
		Description: req.Description,
		Prize:       req.Prize,
		ImageURL:    req.ImageURL,
		MaxEntries:  req.MaxEntries,
		EndDate:     req.EndDate,
	})
	if err != nil {
		logError(c, "failed to create giveaway", "title", req.Title, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error creating giveaway"})
		return
	}
	c.JSON(http.StatusCreated, models.ToGiveaway(*giveaway))
}

// UpdateGiveaway merges the fields present in the body into the giveaway.
func (h *Handler) UpdateGiveaway(c *gin.Context) {
	var req updateGiveawayRequest
	if !binding.JSON(c, &req, giveawayMessages, "Invalid giveaway data") {
		return
	}
	id := c.Param("id")

	giveaway, err := h.storage.UpdateGiveaway(c.Request.Context(), id, storage.GiveawayPatch{
		Title:       req.Title,
		Description: req.Description,
		Prize:       req.Prize,
		ImageURL:    req.ImageURL,
		MaxEntries:  req.MaxEntries,
		EndDate:     req.EndDate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Giveaway not found"})
			return
		}
		logError(c, "failed to update giveaway", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error updating giveaway"})
		return
	}
	c.JSON(http.StatusOK, models.ToGiveaway(*giveaway))
}

// DeleteGiveaway deactivates the giveaway. The row is kept.
func (h *Handler) DeleteGiveaway(c *gin.Context) {
	id := c.Param("id")
	if err := h.storage.DeactivateGiveaway(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Giveaway not found"})
			return
		}
		logError(c, "failed to deactivate giveaway", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error deleting giveaway"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Giveaway deleted successfully"})
}

// EnterGiveaway enters the logged in user into a giveaway.
func (h *Handler) EnterGiveaway(c *gin.Context) {
	user := auth.CurrentUser(c)
	id := c.Param("id")

	entry, err := h.storage.EnterGiveaway(c.Request.Context(), id, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Giveaway not found"})
		return
	case errors.Is(err, storage.ErrGiveawayInactive):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "This giveaway is no longer active"})
		return
	case errors.Is(err, storage.ErrGiveawayFull):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "This giveaway has reached its maximum number of entries"})
		return
	case errors.Is(err, storage.ErrAlreadyEntered):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "You have already entered this giveaway"})
		return
	default:
		logError(c, "failed to enter giveaway", "id", id, "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error entering giveaway"})
		return
	}

	c.JSON(http.StatusCreated, models.GiveawayEntryResponse{
		Message: "Successfully entered giveaway",
		Entry:   models.ToGiveawayEntry(*entry),
	})
}

// UserEntries returns the giveaway entries of the logged in user.
func (h *Handler) UserEntries(c *gin.Context) {
	user := auth.CurrentUser(c)
	entries, err := h.storage.ListUserGiveawayEntries(c.Request.Context(), user.ID)
	if err != nil {
		logError(c, "failed to list user entries", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching giveaway entries"})
		return
	}
	c.JSON(http.StatusOK, models.ToGiveawayEntries(entries))
}

// AllGiveawayEntries returns every giveaway entry with its user and giveaway resolved.
func (h *Handler) AllGiveawayEntries(c *gin.Context) {
	entries, err := h.storage.ListGiveawayEntriesDetailed(c.Request.Context())
	if err != nil {
		logError(c, "failed to list giveaway entries", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error fetching giveaway entries"})
		return
	}
	c.JSON(http.StatusOK, models.ToAdminGiveawayEntries(entries))
}
