package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrBookingChanged is returned when a conditional update found the booking in
// a state it no longer applies to.
var ErrBookingChanged = errors.New("booking changed concurrently")

// BookingRepository persists bookings. Every state change is a single
// conditional UPDATE so the check and the write cannot interleave with another
// request on the same booking.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByUserAndTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Booking, error)
	UpdatePendingDetails(ctx context.Context, id uuid.UUID, guests int, paymentMethod string, total decimal.Decimal) (*domain.Booking, error)
	// MarkPaid flips is_paid and reports whether this call performed the flip.
	MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error)
	// Cancel reports whether this call changed the status.
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, trip_id, guests, total_price::text, status, is_paid, payment_method, booking_date, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, user_id, trip_id, guests, total_price, status, is_paid, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING booking_date, created_at, updated_at`,
		booking.ID, booking.UserID, booking.TripID, booking.Guests, booking.TotalPrice.String(),
		string(booking.Status), booking.IsPaid, booking.PaymentMethod).
		Scan(&booking.BookingDate, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "booking", ID: id.String()}
	}
	return b, err
}

func (r *PGBookingRepository) FindByUserAndTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 AND trip_id=$2 ORDER BY booking_date DESC`, userID, tripID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) UpdatePendingDetails(ctx context.Context, id uuid.UUID, guests int, paymentMethod string, total decimal.Decimal) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET guests=$2, payment_method=$3, total_price=$4, updated_at=now()
		WHERE id=$1 AND status=$5 AND is_paid=false
		RETURNING `+bookingColumns,
		id, guests, paymentMethod, total.String(), string(domain.BookingStatusPending)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingChanged
	}
	return b, err
}

func (r *PGBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET is_paid=true,
			status=CASE WHEN status = ANY($2) THEN $3 ELSE status END,
			updated_at=now()
		WHERE id=$1 AND is_paid=false
		RETURNING `+bookingColumns,
		id, statusStrings(domain.SourcesOf(domain.BookingStatusConfirmed)), string(domain.BookingStatusConfirmed)))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetByID(ctx, id)
		return current, false, getErr
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$2, updated_at=now()
		WHERE id=$1 AND status = ANY($3)
		RETURNING `+bookingColumns,
		id, string(domain.BookingStatusCancelled), statusStrings(domain.SourcesOf(domain.BookingStatusCancelled))))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetByID(ctx, id)
		return current, false, getErr
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		total  string
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.TripID, &b.Guests, &total, &status, &b.IsPaid, &b.PaymentMethod, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.Status = st
	if b.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("booking %s total %q: %w", b.ID, total, err)
	}
	return &b, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

var _ BookingRepository = (*PGBookingRepository)(nil)
