package reconciler

import (
	"context"
	"errors"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/payment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Confirmer is the booking side of a completed payment.
type Confirmer interface {
	MarkConfirmedAndPaid(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, bool, error)
}

// Notifier receives BookingConfirmed after the state change is durable.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *domain.Booking) error
}

type Reconciler struct {
	verifier payment.WebhookVerifier
	bookings Confirmer
	notifier Notifier
	logger   *zap.Logger
}

// Result describes what a delivery did. Handled is false for event types
// that are acknowledged without any mutation.
type Result struct {
	EventID      string
	EventType    string
	Handled      bool
	Booking      *domain.Booking
	Transitioned bool
}

func NewReconciler(verifier payment.WebhookVerifier, bookings Confirmer, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		verifier: verifier,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
	}
}

// Reconcile drives the booking state machine from a provider callback. It has
// no actor: the signature over the raw payload is the only credential.
// Every returned error leaves the booking store untouched, so a provider
// retry is always safe.
func (r *Reconciler) Reconcile(ctx context.Context, payload []byte, signature string) (*Result, error) {
	event, err := r.verifier.Verify(payload, signature)
	if err != nil {
		var sigErr *domain.SignatureError
		if errors.As(err, &sigErr) {
			r.logger.Warn("rejected webhook delivery",
				zap.Bool("security", true),
				zap.Int("payload_bytes", len(payload)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	result := &Result{EventID: event.ID, EventType: event.Type}
	if event.Type != payment.EventCheckoutSessionCompleted {
		r.logger.Debug("ignoring webhook event", zap.String("event_id", event.ID), zap.String("type", event.Type))
		return result, nil
	}

	if event.BookingID == "" {
		return nil, &domain.ValidationError{Field: "metadata.bookingId", Message: "is missing"}
	}
	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "metadata.bookingId", Message: "is not a valid id"}
	}

	booking, transitioned, err := r.bookings.MarkConfirmedAndPaid(ctx, bookingID)
	if err != nil {
		r.logger.Error("failed to reconcile payment",
			zap.String("event_id", event.ID),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	result.Handled = true
	result.Booking = booking
	result.Transitioned = transitioned

	r.logger.Info("payment reconciled",
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", booking.Status.String()),
		zap.Bool("transitioned", transitioned),
	)

	if transitioned && booking.Status == domain.BookingStatusConfirmed {
		r.notify(ctx, booking)
	}
	return result, nil
}

func (r *Reconciler) notify(ctx context.Context, booking *domain.Booking) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.BookingConfirmed(ctx, booking); err != nil {
		r.logger.Error("booking confirmation notification failed",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
}
