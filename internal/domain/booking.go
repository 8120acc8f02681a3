package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

const DefaultPaymentMethod = "Credit Card"

type Booking struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	TripID        uuid.UUID       `json:"tripId"`
	Guests        int             `json:"guests"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        BookingStatus   `json:"status"`
	IsPaid        bool            `json:"isPaid"`
	PaymentMethod string          `json:"paymentMethod"`
	BookingDate   time.Time       `json:"bookingDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BlocksRebooking reports whether the booking holds the (user, trip) pair.
func (b *Booking) BlocksRebooking() bool {
	return b.IsPaid && b.Status != BookingStatusCancelled
}

// Reusable reports whether a new checkout may overwrite this booking.
func (b *Booking) Reusable() bool {
	return !b.IsPaid && b.Status == BookingStatusPending
}

// TotalPrice is the only place a booking total is computed.
func TotalPrice(unit decimal.Decimal, guests int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(guests)))
}
