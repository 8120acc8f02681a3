package api

import (
	"net/http"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	service trips.TripUseCase
}

type tripsResponse struct {
	Success    bool          `json:"success"`
	Trips      []domain.Trip `json:"trips"`
	Pagination pagination    `json:"pagination"`
}

func NewTripHandler(service trips.TripUseCase) *TripHandler {
	return &TripHandler{service: service}
}

func (h *TripHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *TripHandler) list(c *gin.Context) {
	page, limit := queryPage(c)
	list, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tripsResponse{
		Success:    true,
		Trips:      list,
		Pagination: newPagination(total, page, limit),
	})
}

func (h *TripHandler) get(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	trip, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}
