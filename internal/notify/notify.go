package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Publisher hands BookingConfirmed to the worker through Kafka so the
// payment path never waits on mail delivery.
type Publisher struct {
	producer Producer
	topic    string
}

func NewPublisher(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	event := domain.NewBookingEvent(domain.EventBookingConfirmed, booking)
	return p.producer.Publish(ctx, p.topic, booking.ID.String(), event)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Mailer interface {
	SendBookingConfirmed(ctx context.Context, user *domain.User, event domain.BookingEvent) error
}

// Handler is the worker side: one Kafka message, at most one email.
type Handler struct {
	users  UserLookup
	mailer Mailer
	logger *zap.Logger
}

func NewHandler(users UserLookup, mailer Mailer, logger *zap.Logger) *Handler {
	return &Handler{users: users, mailer: mailer, logger: logger}
}

// Handle returns an error only for failures worth redelivering; poison
// messages and send failures are logged and committed.
func (h *Handler) Handle(ctx context.Context, msg kafkaGo.Message) error {
	if t := eventType(msg); t != "" && t != domain.EventBookingConfirmed {
		return nil
	}

	var event domain.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("decode notification event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	if event.Type != domain.EventBookingConfirmed {
		return nil
	}

	user, err := h.users.GetByID(ctx, event.UserID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			h.logger.Warn("notification for unknown user",
				zap.String("booking_id", event.BookingID.String()),
				zap.String("user_id", event.UserID.String()),
			)
			return nil
		}
		return err
	}

	if err := h.mailer.SendBookingConfirmed(ctx, user, event); err != nil {
		h.logger.Error("booking confirmation email failed",
			zap.String("booking_id", event.BookingID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func eventType(msg kafkaGo.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
