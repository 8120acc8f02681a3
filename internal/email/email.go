package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/domain"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers mail over SMTP. Without a configured host it only logs.
type Sender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

func NewSender(cfg config.SMTPConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return &domain.ValidationError{Field: "to", Message: "recipient is required"}
	}
	if !s.cfg.Enabled() {
		s.logger.Info("smtp disabled, email not sent",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, []string{msg.To}, s.render(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	s.logger.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *Sender) SendBookingConfirmed(ctx context.Context, user *domain.User, event domain.BookingEvent) error {
	return s.Send(ctx, BookingConfirmedMessage(user, event))
}

func (s *Sender) render(msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return buf.Bytes()
}

func BookingConfirmedMessage(user *domain.User, event domain.BookingEvent) Message {
	name := user.Name
	if name == "" {
		name = "traveller"
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	body.WriteString("Your payment was received and your booking is confirmed.\n\n")
	fmt.Fprintf(&body, "Booking: %s\n", event.BookingID)
	fmt.Fprintf(&body, "Guests: %d\n", event.Guests)
	fmt.Fprintf(&body, "Total paid: %s\n", event.TotalPrice.StringFixed(2))
	fmt.Fprintf(&body, "Payment method: %s\n", event.PaymentMethod)
	return Message{
		To:      user.Email,
		Subject: "Your trip booking is confirmed",
		Body:    body.String(),
	}
}
