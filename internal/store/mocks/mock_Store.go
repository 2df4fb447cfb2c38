// Package mocks provides test doubles for the store package.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/store"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// SaveRun provides a mock function with given fields: ctx, run
func (_m *MockStore) SaveRun(ctx context.Context, run *store.Run) error {
	ret := _m.Called(ctx, run)

	if len(ret) == 0 {
		panic("no return value specified for SaveRun")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *store.Run) error); ok {
		return rf(ctx, run)
	}
	return ret.Error(0)
}

// GetRun provides a mock function with given fields: ctx, id
func (_m *MockStore) GetRun(ctx context.Context, id string) (*store.Run, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for GetRun")
	}

	var r0 *store.Run
	if rf, ok := ret.Get(0).(func(context.Context, string) *store.Run); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*store.Run)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListRuns provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]store.Run, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListRuns")
	}

	var r0 []store.Run
	if rf, ok := ret.Get(0).(func(context.Context, store.RunFilter) []store.Run); ok {
		r0 = rf(ctx, filter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]store.Run)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, store.RunFilter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SaveUniverse provides a mock function with given fields: ctx, regions
func (_m *MockStore) SaveUniverse(ctx context.Context, regions []model.Region) (int64, error) {
	ret := _m.Called(ctx, regions)

	if len(ret) == 0 {
		panic("no return value specified for SaveUniverse")
	}

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, []model.Region) int64); ok {
		r0 = rf(ctx, regions)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []model.Region) error); ok {
		r1 = rf(ctx, regions)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		return rf(ctx)
	}
	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	if rf, ok := ret.Get(0).(func() error); ok {
		return rf()
	}
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	mock := &MockStore{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
