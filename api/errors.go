package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		signature  *domain.SignatureError
		upstream   *domain.UpstreamError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &signature):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError never exposes internal error text for 5xx responses.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "Internal server error"
	case http.StatusBadGateway:
		message = "Payment provider is unavailable, please retry"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message})
}
