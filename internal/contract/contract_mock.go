package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/stockcast/schema"
)

// MockSalesReader is a mock implementation of SalesReader for testing.
type MockSalesReader struct {
	mock.Mock
}

var _ SalesReader = &MockSalesReader{} // Compile-time check

// ListEligibleSales implements the SalesReader interface.
func (m *MockSalesReader) ListEligibleSales(ctx context.Context, window schema.Window, statuses []schema.SaleStatus) ([]schema.SaleEvent, error) {
	args := m.Called(ctx, window, statuses)
	events, _ := args.Get(0).([]schema.SaleEvent)
	return events, args.Error(1)
}

// ListProducts implements the SalesReader interface.
func (m *MockSalesReader) ListProducts(ctx context.Context) ([]schema.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]schema.Product)
	return products, args.Error(1)
}

// Close implements the SalesReader interface.
func (m *MockSalesReader) Close() error {
	args := m.Called()
	return args.Error(0)
}
