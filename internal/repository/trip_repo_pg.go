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

type TripRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.Trip, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
}

type PGTripRepository struct {
	db *pgxpool.Pool
}

func NewTripRepository(db *pgxpool.Pool) TripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `id, title, description, estimated_price::text, duration, country, image_urls, created_at, updated_at`

func (r *PGTripRepository) List(ctx context.Context, limit, offset int) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (r *PGTripRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&n)
	return n, err
}

func (r *PGTripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	t, err := scanTrip(r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "trip", ID: id.String()}
	}
	return t, err
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var (
		t     domain.Trip
		price string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &price, &t.Duration, &t.Country, &t.ImageURLs, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("trip %s price %q: %w", t.ID, price, err)
	}
	t.EstimatedPrice = p
	return &t, nil
}

var _ TripRepository = (*PGTripRepository)(nil)
