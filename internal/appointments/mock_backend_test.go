package appointments

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/shop-admin/internal/models"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) UpdateStatus(ctx context.Context, id string, from, to models.Status, notes string) error {
	args := m.Called(ctx, id, from, to, notes)
	return args.Error(0)
}

func (m *MockBackend) UpdateWorkNotes(ctx context.Context, id string, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockBackend) UpdateCosts(ctx context.Context, id string, items []models.CostItem, total decimal.Decimal) error {
	args := m.Called(ctx, id, items, total)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
