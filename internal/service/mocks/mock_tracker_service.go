package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devtrack/internal/model"
	"devtrack/internal/service"
)

type MockTrackerService struct {
	mock.Mock
}

func (m *MockTrackerService) Link(ctx context.Context, ref string) (*model.SheetLink, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SheetLink), args.Error(1)
}

func (m *MockTrackerService) Status(ctx context.Context) (*model.SheetLink, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SheetLink), args.Error(1)
}

func (m *MockTrackerService) Unlink(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrackerService) ListDevices(ctx context.Context) (*service.DeviceListResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeviceListResult), args.Error(1)
}

func (m *MockTrackerService) SetCompleted(ctx context.Context, device string, completed bool) (*service.UpdateResult, error) {
	args := m.Called(ctx, device, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateResult), args.Error(1)
}

func (m *MockTrackerService) SetComment(ctx context.Context, device, comment string) (*service.UpdateResult, error) {
	args := m.Called(ctx, device, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateResult), args.Error(1)
}

func (m *MockTrackerService) Export(ctx context.Context) (*service.ExportResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockTrackerService) History(ctx context.Context, limit, offset int) (*service.HistoryResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryResult), args.Error(1)
}
