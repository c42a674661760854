package rest

import (
	"errors"
	"fmt"
	"net/http"

	"postsapi/internal/service"
	"postsapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgDeleted          = "Post has been deleted!"
	msgInternal         = "internal error"
	msgMalformedBody    = "Request body must be valid JSON"
	msgBodyTooLarge     = "Request body too large"
	msgRouteNotFound    = "Not found"
	msgMethodNotAllowed = "Method not allowed"
)

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func abortNotFound(c *gin.Context, id string) {
	abortWithMessage(c, http.StatusNotFound, fmt.Sprintf("Could not find post with id %s", id))
}

// abortWithServiceError maps service errors for routes addressing a single
// post; ids that fail service validation cannot exist and read as 404.
func abortWithServiceError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidRequest):
		abortNotFound(c, id)
	default:
		abortInternal(c, err)
	}
}

func abortInternal(c *gin.Context, err error) {
	logger.FromContext(c.Request.Context()).Error("posts request failed", "error", err)
	_ = c.Error(err)
	abortWithMessage(c, http.StatusInternalServerError, msgInternal)
}
