package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/payment"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memBookingStore applies every conditional update under one mutex, matching
// the single-statement semantics of the Postgres repository.
type memBookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
	writes   int
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{bookings: map[uuid.UUID]domain.Booking{}}
}

func (m *memBookingStore) Create(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	b.BookingDate, b.CreatedAt, b.UpdatedAt = now, now, now
	m.bookings[b.ID] = *b
	m.writes++
	return nil
}

func (m *memBookingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "booking", ID: id.String()}
	}
	return &b, nil
}

func (m *memBookingStore) FindByUserAndTrip(_ context.Context, userID, tripID uuid.UUID) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID && b.TripID == tripID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

func (m *memBookingStore) UpdatePendingDetails(_ context.Context, id uuid.UUID, guests int, paymentMethod string, total decimal.Decimal) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != domain.BookingStatusPending || b.IsPaid {
		return nil, repository.ErrBookingChanged
	}
	b.Guests, b.PaymentMethod, b.TotalPrice = guests, paymentMethod, total
	m.bookings[id] = b
	m.writes++
	return &b, nil
}

func (m *memBookingStore) MarkPaid(_ context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, false, &domain.NotFoundError{Resource: "booking", ID: id.String()}
	}
	if b.IsPaid {
		return &b, false, nil
	}
	b.IsPaid = true
	if domain.CanTransition(b.Status, domain.BookingStatusConfirmed) {
		b.Status = domain.BookingStatusConfirmed
	}
	m.bookings[id] = b
	m.writes++
	return &b, true, nil
}

func (m *memBookingStore) Cancel(_ context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, false, &domain.NotFoundError{Resource: "booking", ID: id.String()}
	}
	if !domain.CanTransition(b.Status, domain.BookingStatusCancelled) {
		return &b, false, nil
	}
	b.Status = domain.BookingStatusCancelled
	m.bookings[id] = b
	m.writes++
	return &b, true, nil
}

func (m *memBookingStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []domain.Booking{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memBookingStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memBookingStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var _ repository.BookingRepository = (*memBookingStore)(nil)

type MockTripCatalog struct {
	mock.Mock
}

func (m *MockTripCatalog) GetPricing(ctx context.Context, id uuid.UUID) (*domain.TripPricing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPricing), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireBookingLock(ctx context.Context, userID, tripID uuid.UUID, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, userID, tripID, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) ReleaseBookingLock(ctx context.Context, userID, tripID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, tripID, token)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// MockBookingRepository is used where a test needs to inject store failures.
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByUserAndTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, tripID)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingRepository) UpdatePendingDetails(ctx context.Context, id uuid.UUID, guests int, paymentMethod string, total decimal.Decimal) (*domain.Booking, error) {
	args := m.Called(ctx, id, guests, paymentMethod, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Bool(1), args.Error(2)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Bool(1), args.Error(2)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Int(1), args.Error(2)
}
