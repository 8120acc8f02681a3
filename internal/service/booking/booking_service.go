package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/payment"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/Domenick1991/tripbooking/internal/service/trips"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actorID uuid.UUID, input CreateBookingInput) (*Checkout, error)
	CreateOrReuseBooking(ctx context.Context, actorID uuid.UUID, input CreateBookingInput) (*domain.Booking, error)
	MarkConfirmedAndPaid(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, bool, error)
	CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)
	CheckAvailability(ctx context.Context, actorID, tripID uuid.UUID) (bool, error)
	GetBookingForUser(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, actorID uuid.UUID, page, limit int) ([]domain.Booking, int, error)
}

type TripCatalog interface {
	GetPricing(ctx context.Context, id uuid.UUID) (*domain.TripPricing, error)
}

type Locker interface {
	AcquireBookingLock(ctx context.Context, userID, tripID uuid.UUID, ttl time.Duration) (string, bool, error)
	ReleaseBookingLock(ctx context.Context, userID, tripID uuid.UUID, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings     repository.BookingRepository
	trips        TripCatalog
	gateway      payment.Gateway
	locker       Locker
	producer     Producer
	logger       *zap.Logger
	bookingTopic string
	lockTTL      time.Duration
	currency     string
	clientOrigin string
}

type CreateBookingInput struct {
	TripID        uuid.UUID `json:"tripId"`
	Guests        int       `json:"guests"`
	PaymentMethod string    `json:"paymentMethod"`
}

// Checkout is the result of a booking request: the pending booking and the
// provider page the client is sent to.
type Checkout struct {
	Booking     *domain.Booking
	SessionID   string
	RedirectURL string
}

type BookingServiceOption func(*BookingService)

func WithLocker(locker Locker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithEvents(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithCheckout(currency, clientOrigin string) BookingServiceOption {
	return func(s *BookingService) {
		s.currency = currency
		s.clientOrigin = strings.TrimRight(clientOrigin, "/")
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	trips TripCatalog,
	gateway payment.Gateway,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		trips:        trips,
		gateway:      gateway,
		logger:       logger,
		lockTTL:      30 * time.Second,
		currency:     "usd",
		clientOrigin: "http://localhost:3000",
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (in CreateBookingInput) normalize() (CreateBookingInput, error) {
	if in.TripID == uuid.Nil {
		return in, &domain.ValidationError{Field: "tripId", Message: "is required"}
	}
	if in.Guests < 1 {
		return in, &domain.ValidationError{Field: "guests", Message: "must be at least 1"}
	}
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.DefaultPaymentMethod
	}
	return in, nil
}

// CreateBooking reserves (or reuses) the pending booking for the actor and
// opens a checkout session for it. A provider failure leaves the booking
// pending; calling again reuses it.
func (s *BookingService) CreateBooking(ctx context.Context, actorID uuid.UUID, input CreateBookingInput) (*Checkout, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	pricing, err := s.trips.GetPricing(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	unitAmount, err := domain.ToMinorUnits(pricing.UnitPrice)
	if err != nil {
		return nil, err
	}

	booking, err := s.createOrReuse(ctx, actorID, input, pricing)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		LineItem: payment.LineItem{
			Name:        pricing.Title,
			Description: pricing.Description,
			ImageURL:    pricing.ImageURL,
			UnitAmount:  unitAmount,
			Quantity:    int64(booking.Guests),
		},
		Currency:          s.currency,
		SuccessURL:        fmt.Sprintf("%s/booking/success?bookingId=%s", s.clientOrigin, booking.ID),
		CancelURL:         fmt.Sprintf("%s/trips/%s", s.clientOrigin, booking.TripID),
		ClientReferenceID: booking.ID.String(),
		Metadata:          checkoutMetadata(booking),
	})
	if err != nil {
		s.logger.Error("checkout session failed",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
		return nil, &domain.UpstreamError{Op: "create checkout session", Err: err}
	}

	return &Checkout{Booking: booking, SessionID: session.ID, RedirectURL: session.URL}, nil
}

// checkoutMetadata travels with the session and comes back on the webhook.
func checkoutMetadata(b *domain.Booking) map[string]string {
	return map[string]string{
		"bookingId":     b.ID.String(),
		"userId":        b.UserID.String(),
		"tripId":        b.TripID.String(),
		"guests":        strconv.Itoa(b.Guests),
		"paymentMethod": b.PaymentMethod,
		"totalPrice":    b.TotalPrice.StringFixed(2),
	}
}

func (s *BookingService) CreateOrReuseBooking(ctx context.Context, actorID uuid.UUID, input CreateBookingInput) (*domain.Booking, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	pricing, err := s.trips.GetPricing(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	return s.createOrReuse(ctx, actorID, input, pricing)
}

func (s *BookingService) createOrReuse(ctx context.Context, actorID uuid.UUID, input CreateBookingInput, pricing *domain.TripPricing) (*domain.Booking, error) {
	if actorID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "user", Message: "is required"}
	}

	unlock, err := s.lock(ctx, actorID, input.TripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	total := domain.TotalPrice(pricing.UnitPrice, input.Guests)

	existing, err := s.bookings.FindByUserAndTrip(ctx, actorID, input.TripID)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	for i := range existing {
		if existing[i].IsPaid {
			return nil, &domain.ConflictError{Message: "You have already paid for this trip."}
		}
	}

	for i := range existing {
		if !existing[i].Reusable() {
			continue
		}
		updated, err := s.bookings.UpdatePendingDetails(ctx, existing[i].ID, input.Guests, input.PaymentMethod, total)
		if errors.Is(err, repository.ErrBookingChanged) {
			// paid or cancelled between our read and write
			return nil, &domain.ConflictError{Message: "Booking was updated concurrently, please retry."}
		}
		if err != nil {
			return nil, fmt.Errorf("update pending booking: %w", err)
		}
		s.logger.Info("reusing pending booking",
			zap.String("booking_id", updated.ID.String()),
			zap.Int("guests", updated.Guests),
		)
		return updated, nil
	}

	booking := &domain.Booking{
		ID:            uuid.New(),
		UserID:        actorID,
		TripID:        input.TripID,
		Guests:        input.Guests,
		TotalPrice:    total,
		Status:        domain.BookingStatusPending,
		IsPaid:        false,
		PaymentMethod: input.PaymentMethod,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(ctx, domain.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) lock(ctx context.Context, userID, tripID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	token, ok, err := s.locker.AcquireBookingLock(ctx, userID, tripID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return nil, &domain.ConflictError{Message: "A booking for this trip is already in progress."}
	}
	return func() {
		if err := s.locker.ReleaseBookingLock(context.WithoutCancel(ctx), userID, tripID, token); err != nil {
			s.logger.Warn("release booking lock failed", zap.Error(err))
		}
	}, nil
}

// MarkConfirmedAndPaid is the only path that sets is_paid. The boolean is true
// only for the call that performed the unpaid to paid transition, so replays
// and concurrent deliveries observe false.
func (s *BookingService) MarkConfirmedAndPaid(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, bool, error) {
	booking, transitioned, err := s.bookings.MarkPaid(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}
	if !transitioned {
		s.logger.Info("booking already paid", zap.String("booking_id", bookingID.String()))
		return booking, false, nil
	}

	switch booking.Status {
	case domain.BookingStatusConfirmed:
		s.publish(ctx, domain.EventBookingConfirmed, booking)
	case domain.BookingStatusCancelled:
		s.logger.Warn("payment received for cancelled booking",
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		s.publish(ctx, domain.EventBookingPaidAfterCancel, booking)
	}
	return booking, true, nil
}

// CancelBooking is idempotent; cancelling a cancelled booking returns it unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
	if _, err := s.GetBookingForUser(ctx, actorID, bookingID); err != nil {
		return nil, err
	}

	booking, changed, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.publish(ctx, domain.EventBookingCancelled, booking)
	}
	return booking, nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, actorID, tripID uuid.UUID) (bool, error) {
	existing, err := s.bookings.FindByUserAndTrip(ctx, actorID, tripID)
	if err != nil {
		return false, err
	}
	for i := range existing {
		if existing[i].BlocksRebooking() {
			return false, nil
		}
	}
	return true, nil
}

// GetBookingForUser hides bookings of other users behind NotFoundError.
func (s *BookingService) GetBookingForUser(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actorID {
		return nil, &domain.NotFoundError{Resource: "booking", ID: bookingID.String()}
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, actorID uuid.UUID, page, limit int) ([]domain.Booking, int, error) {
	page, limit = trips.NormalizePage(page, limit)
	return s.bookings.ListByUser(ctx, actorID, limit, (page-1)*limit)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := domain.NewBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID.String(), event); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
