package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	// A payment landed on a booking that was already cancelled; needs a refund.
	EventBookingPaidAfterCancel = "booking_paid_after_cancel"
)

// BookingEvent is the payload published for every booking lifecycle change.
type BookingEvent struct {
	Type          string          `json:"type"`
	BookingID     uuid.UUID       `json:"booking_id"`
	UserID        uuid.UUID       `json:"user_id"`
	TripID        uuid.UUID       `json:"trip_id"`
	Guests        int             `json:"guests"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        BookingStatus   `json:"status"`
	IsPaid        bool            `json:"is_paid"`
	PaymentMethod string          `json:"payment_method"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		UserID:        b.UserID,
		TripID:        b.TripID,
		Guests:        b.Guests,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		IsPaid:        b.IsPaid,
		PaymentMethod: b.PaymentMethod,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e BookingEvent) EventType() string {
	return e.Type
}
