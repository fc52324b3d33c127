// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
)

// MockWorkflow is a mock type for the Workflow type.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a new instance of MockWorkflow. It registers a
// cleanup function that asserts the expectations of the mock.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Mock.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// Map provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Map(ctx context.Context, args domain.MapArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// Subset provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Subset(ctx context.Context, args domain.SubsetArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// Report provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Report(ctx context.Context, args domain.ReportArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// Estimate provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Estimate(ctx context.Context, args domain.EstimateArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// View provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return _m.Called(ctx, args).Error(0)
}

var _ domain.Workflow = (*MockWorkflow)(nil)
