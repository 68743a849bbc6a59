package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/roster-cli/internal/model"
)

// --- Customer Repository Mock ---

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) FetchCustomers(ctx context.Context, shopID string) ([]model.Customer, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Customer), args.Error(1)
}

// --- Shop Repository Mock ---

type mockShopRepo struct {
	mock.Mock
}

func (m *mockShopRepo) FetchShops(ctx context.Context) ([]model.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Shop), args.Error(1)
}
