package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devtrack/internal/model"
	"devtrack/internal/repository"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, rec *model.CellUpdate) (*model.CellUpdate, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CellUpdate), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.CellUpdate], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.CellUpdate]), args.Error(1)
}
