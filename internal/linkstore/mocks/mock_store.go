package mocks

import (
	"github.com/stretchr/testify/mock"

	"devtrack/internal/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load() (*model.SheetLink, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SheetLink), args.Error(1)
}

func (m *MockStore) Save(link *model.SheetLink) error {
	args := m.Called(link)
	return args.Error(0)
}

func (m *MockStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}
