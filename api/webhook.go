package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/tripbooking/internal/payment"
	"github.com/Domenick1991/tripbooking/internal/service/reconciler"
	"github.com/gin-gonic/gin"
)

// MaxWebhookBody bounds the raw callback body read before verification.
const MaxWebhookBody = 64 << 10

type WebhookReconciler interface {
	Reconcile(ctx context.Context, payload []byte, signature string) (*reconciler.Result, error)
}

type WebhookHandler struct {
	reconciler WebhookReconciler
}

func NewWebhookHandler(r WebhookReconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: r}
}

// Register mounts the callback. The group must not bind or rewrite the body:
// the signature covers the exact bytes on the wire.
func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.receive)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Message: "payload too large"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "unreadable body"})
		return
	}

	if _, err := h.reconciler.Reconcile(c.Request.Context(), payload, c.GetHeader(payment.SignatureHeader)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
