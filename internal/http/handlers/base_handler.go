// README: Base handler utilities (JSON envelope, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/modules/dispatch"
	"dishpatch/internal/modules/order"
	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/modules/zone"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Message: msg})
}

// failErr maps module sentinel errors onto HTTP statuses. Unknown errors
// become a generic 500; raw error text is never echoed to the client.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, coupon.ErrBadRequest),
		errors.Is(err, zone.ErrBadRequest),
		errors.Is(err, order.ErrBadRequest),
		errors.Is(err, pricing.ErrBadRequest),
		errors.Is(err, dispatch.ErrBadRequest):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, zone.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, dispatch.ErrNoCouriers):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, coupon.ErrDuplicateCode),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, order.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
