// Package binding binds request bodies and turns validation failures into display messages.
package binding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pubzy/giveaways/internal/api/models"
)

// Messages maps a struct field and a failed validation tag to the message shown to the user.
type Messages map[string]map[string]string

// JSON binds the request body into req. On failure it writes a 400 and returns false.
func JSON(c *gin.Context, req any, messages Messages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: Resolve(err, messages, fallback)})
		return false
	}
	return true
}

// Resolve returns the message of the first validation error found in messages, or fallback.
func Resolve(err error, messages Messages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "Invalid request"
}
