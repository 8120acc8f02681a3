package payment

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	// SignatureHeader carries the provider signature over the raw request body.
	SignatureHeader = "Stripe-Signature"

	EventCheckoutSessionCompleted = "checkout.session.completed"

	metadataBookingID = "bookingId"
)

// Event is the verified, provider-neutral view of a webhook delivery.
type Event struct {
	ID        string
	Type      string
	SessionID string
	// BookingID is read from session metadata; empty when absent.
	BookingID string
}

// WebhookVerifier authenticates a raw webhook body.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) (*Event, error)
}

type StripeWebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewStripeWebhookVerifier(secret string, tolerance time.Duration) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret, tolerance: tolerance}
}

// Verify must receive the body exactly as it arrived on the wire.
func (v *StripeWebhookVerifier) Verify(payload []byte, signature string) (*Event, error) {
	if v.secret == "" {
		return nil, &domain.SignatureError{Err: errors.New("webhook secret is not configured")}
	}
	if signature == "" {
		return nil, &domain.SignatureError{Err: errors.New("missing " + SignatureHeader + " header")}
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &domain.SignatureError{Err: err}
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutSessionCompleted || ev.Data == nil {
		return out, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
		return nil, &domain.ValidationError{Field: "data.object", Message: "malformed checkout session: " + err.Error()}
	}
	out.SessionID = session.ID
	out.BookingID = session.Metadata[metadataBookingID]
	return out, nil
}

var _ WebhookVerifier = (*StripeWebhookVerifier)(nil)
