package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	TripID        string `json:"tripId"`
	Guests        int    `json:"guests"`
	PaymentMethod string `json:"paymentMethod"`
}

type createBookingResponse struct {
	Success     bool            `json:"success"`
	RedirectURL string          `json:"redirectUrl"`
	Booking     *domain.Booking `json:"booking"`
	Message     string          `json:"message"`
}

type pagination struct {
	TotalItems  int `json:"totalItems"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
}

type userBookingsResponse struct {
	Success      bool             `json:"success"`
	UserBookings []domain.Booking `json:"userBookings"`
	Pagination   pagination       `json:"pagination"`
}

type availabilityResponse struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type verifyBookingResponse struct {
	Status domain.BookingStatus `json:"status"`
	IsPaid bool                 `json:"isPaid"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register expects router to already run AuthMiddleware.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/create-booking", h.create)
	router.GET("/user-bookings", h.listMine)
	router.GET("/check-booking/:tripId", h.check)
	router.GET("/verify-booking", h.verify)
	router.POST("/cancel-booking/:bookingId", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Not authorized"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &domain.ValidationError{Message: "invalid request body"})
		return
	}
	tripID, err := parseID("tripId", req.TripID)
	if err != nil {
		writeError(c, err)
		return
	}

	checkout, err := h.service.CreateBooking(c.Request.Context(), actor, booking.CreateBookingInput{
		TripID:        tripID,
		Guests:        req.Guests,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createBookingResponse{
		Success:     true,
		RedirectURL: checkout.RedirectURL,
		Booking:     checkout.Booking,
		Message:     "Booking created successfully!",
	})
}

func (h *BookingHandler) listMine(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Not authorized"})
		return
	}

	page, limit := queryPage(c)
	bookings, total, err := h.service.ListUserBookings(c.Request.Context(), actor, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userBookingsResponse{
		Success:      true,
		UserBookings: bookings,
		Pagination:   newPagination(total, page, limit),
	})
}

func (h *BookingHandler) check(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Not authorized"})
		return
	}
	tripID, err := parseID("tripId", c.Param("tripId"))
	if err != nil {
		writeError(c, err)
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), actor, tripID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := availabilityResponse{Success: available, Available: available, Message: "Trip available to book"}
	if !available {
		resp.Message = "Trip already booked by user"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) verify(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Not authorized"})
		return
	}
	bookingID, err := parseID("bookingId", c.Query("bookingId"))
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.service.GetBookingForUser(c.Request.Context(), actor, bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyBookingResponse{Status: b.Status, IsPaid: b.IsPaid})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Not authorized"})
		return
	}
	bookingID, err := parseID("bookingId", c.Param("bookingId"))
	if err != nil {
		writeError(c, err)
		return
	}

	if _, err := h.service.CancelBooking(c.Request.Context(), actor, bookingID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Booking Cancelled!"})
}

func parseID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, &domain.ValidationError{Field: field, Message: "is required"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Field: field, Message: "is not a valid id"}
	}
	return id, nil
}

func queryPage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return trips.NormalizePage(page, limit)
}

func newPagination(total, page, limit int) pagination {
	return pagination{
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		PageSize:    limit,
	}
}
