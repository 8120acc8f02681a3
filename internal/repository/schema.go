package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitialiseSchema creates the tables the booking flow reads and writes.
func InitialiseSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users", `CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"trips", `CREATE TABLE IF NOT EXISTS trips (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			estimated_price NUMERIC(12, 2) NOT NULL CHECK (estimated_price > 0),
			duration INTEGER NOT NULL DEFAULT 1,
			country TEXT NOT NULL DEFAULT '',
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"bookings", `CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			trip_id UUID NOT NULL REFERENCES trips(id),
			guests INTEGER NOT NULL CHECK (guests >= 1),
			total_price NUMERIC(14, 2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			is_paid BOOLEAN NOT NULL DEFAULT false,
			payment_method TEXT NOT NULL DEFAULT 'Credit Card',
			booking_date TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		// (user, trip) is deliberately not unique; the booking service owns that rule.
		{"bookings_user_trip_idx", `CREATE INDEX IF NOT EXISTS bookings_user_trip_idx ON bookings (user_id, trip_id)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(ctx, st.sql); err != nil {
			return fmt.Errorf("creating %s: %w", st.name, err)
		}
	}
	return nil
}
