package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Trip struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
	Duration       int             `json:"duration"`
	Country        string          `json:"country"`
	ImageURLs      []string        `json:"imageUrls"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CoverImage returns the first image or "" when the trip has none.
func (t *Trip) CoverImage() string {
	if len(t.ImageURLs) == 0 {
		return ""
	}
	return t.ImageURLs[0]
}

// TripPricing carries what checkout needs from the catalog.
type TripPricing struct {
	TripID      uuid.UUID
	Title       string
	Description string
	ImageURL    string
	UnitPrice   decimal.Decimal
}
