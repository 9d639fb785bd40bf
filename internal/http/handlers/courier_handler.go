// README: Handlers for courier availability and location updates.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/dispatch"
	"dishpatch/internal/types"
)

type CourierHandler struct {
	dispatch *dispatch.Service
}

func NewCourierHandler(svc *dispatch.Service) *CourierHandler {
	return &CourierHandler{dispatch: svc}
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *CourierHandler) UpdateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if err := h.dispatch.UpdateLocation(c.Request.Context(), id, types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"courier_id": id})
}

type availabilityReq struct {
	Available bool    `json:"available"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

func (h *CourierHandler) SetAvailability(c *gin.Context) {
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))

	var err error
	if req.Available {
		err = h.dispatch.SetAvailable(c.Request.Context(), id, types.Point{Lat: req.Lat, Lng: req.Lng})
	} else {
		err = h.dispatch.SetUnavailable(c.Request.Context(), id)
	}
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"courier_id": id, "available": req.Available})
}
