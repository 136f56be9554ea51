package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// SessionHeader carries the guest cart session
const SessionHeader = "X-Session-ID"

var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation:   http.StatusBadRequest,
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindBusinessRule: http.StatusUnprocessableEntity,
	apperror.KindConflict:     http.StatusConflict,
	apperror.KindInternal:     http.StatusInternalServerError,
}

// respondError maps a service error to its status code. Internal errors are
// attached to the gin context for the request logger and never shown.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := statusByKind[kind]

	if kind == apperror.KindInternal {
		_ = c.Error(err)
		c.JSON(status, gin.H{
			"error": "Internal server error",
			"code":  "internal",
		})
		return
	}

	msg, _ := apperror.MessageOf(err)
	c.JSON(status, gin.H{
		"error": msg,
		"code":  apperror.CodeOf(err),
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

// parseID reads a numeric path parameter, answering 400 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// parseOptionalID reads a numeric query parameter; absent means nil
func parseOptionalID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// actor is the signed-in user driving an admin or customer change
func actor(c *gin.Context) *uint {
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		return &id
	}
	return nil
}

// cartOwner identifies whose cart the request works on. A guest without a
// session gets a fresh one when create is set; it is echoed in the
// X-Session-ID response header.
func cartOwner(c *gin.Context, create bool) cart.Owner {
	owner := cart.Owner{SessionID: c.GetHeader(SessionHeader)}
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		owner.UserID = &id
		return owner
	}
	if owner.SessionID == "" && create {
		owner.SessionID = uuid.NewString()
	}
	if owner.SessionID != "" {
		c.Header(SessionHeader, owner.SessionID)
	}
	return owner
}
