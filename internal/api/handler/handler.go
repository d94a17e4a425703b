package handler

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/notify/email"
	"github.com/pubzy/giveaways/internal/storage"
)

// Notifier sends the community emails triggered by requests.
type Notifier interface {
	SendEntryConfirmation(email.EntryConfirmation) error
	SendWinnerNotification(email.WinnerNotification) error
}

// Handler serves the public and user facing API.
type Handler struct {
	storage  *storage.Storage
	notifier Notifier
}

// New creates a handler. notifier may be nil.
func New(st *storage.Storage, notifier Notifier) *Handler {
	return &Handler{
		storage:  st,
		notifier: notifier,
	}
}

// notify runs send in the background. Failures are only logged.
func (h *Handler) notify(c *gin.Context, kind string, send func(Notifier) error) {
	if h.notifier == nil {
		return
	}
	requestID := c.GetString(models.RequestIDKey)
	go func() {
		if err := send(h.notifier); err != nil {
			log.Error("failed to send email", "kind", kind, "request_id", requestID, "error", err)
		}
	}()
}

func logError(c *gin.Context, msg string, args ...any) {
	log.Error(msg, append(args, "request_id", c.GetString(models.RequestIDKey))...)
}
