// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	google "github.com/sells-group/roster-cli/pkg/google"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// UpdateValues provides a mock function with given fields: ctx, spreadsheetID, rng, rows
func (_m *MockClient) UpdateValues(ctx context.Context, spreadsheetID string, rng string, rows [][]interface{}) (*google.UpdateResult, error) {
	ret := _m.Called(ctx, spreadsheetID, rng, rows)

	if len(ret) == 0 {
		panic("no return value specified for UpdateValues")
	}

	var r0 *google.UpdateResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]interface{}) (*google.UpdateResult, error)); ok {
		return rf(ctx, spreadsheetID, rng, rows)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]interface{}) *google.UpdateResult); ok {
		r0 = rf(ctx, spreadsheetID, rng, rows)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.UpdateResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, [][]interface{}) error); ok {
		r1 = rf(ctx, spreadsheetID, rng, rows)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
