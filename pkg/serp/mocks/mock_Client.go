// Package mocks provides test doubles for the serp client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	serp "github.com/ranklens/ranklens/pkg/serp"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Search provides a mock function with given fields: ctx, req
func (_m *MockClient) Search(ctx context.Context, req serp.SearchRequest) (*serp.SearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Search")
	}

	var r0 *serp.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, serp.SearchRequest) (*serp.SearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, serp.SearchRequest) *serp.SearchResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*serp.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, serp.SearchRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
