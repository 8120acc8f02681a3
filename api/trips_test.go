package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTripUseCase struct {
	mock.Mock
}

func (m *MockTripUseCase) List(ctx context.Context, page, limit int) ([]domain.Trip, int, error) {
	args := m.Called(ctx, page, limit)
	trips, _ := args.Get(0).([]domain.Trip)
	return trips, args.Int(1), args.Error(2)
}

func (m *MockTripUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) GetPricing(ctx context.Context, id uuid.UUID) (*domain.TripPricing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPricing), args.Error(1)
}

func TestTripHandler_list(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/trips?limit=500", nil)

	trips := []domain.Trip{{ID: uuid.New(), Title: "Iceland ring road", EstimatedPrice: decimal.RequireFromString("1299.50")}}
	mockService.On("List", c.Request.Context(), 1, 50).Return(trips, 1, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response tripsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Trips, 1)
	assert.Equal(t, "Iceland ring road", response.Trips[0].Title)
	assert.True(t, response.Trips[0].EstimatedPrice.Equal(decimal.RequireFromString("1299.5")))
	assert.Equal(t, 50, response.Pagination.PageSize)
	assert.Equal(t, 1, response.Pagination.TotalPages)
	mockService.AssertExpectations(t)
}

func TestTripHandler_get(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)
	id := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/trips/"+id.String(), nil)

	mockService.On("GetByID", c.Request.Context(), id).Return(nil, &domain.NotFoundError{Resource: "trip", ID: id.String()})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
