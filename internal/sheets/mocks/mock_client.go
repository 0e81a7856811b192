package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devtrack/internal/sheets"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Describe(ctx context.Context, spreadsheetID string) (*sheets.SpreadsheetInfo, error) {
	args := m.Called(ctx, spreadsheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sheets.SpreadsheetInfo), args.Error(1)
}

func (m *MockClient) ReadRows(ctx context.Context, spreadsheetID, sheetTitle string) ([][]interface{}, error) {
	args := m.Called(ctx, spreadsheetID, sheetTitle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]interface{}), args.Error(1)
}

func (m *MockClient) UpdateCell(ctx context.Context, spreadsheetID, a1Range string, value interface{}) error {
	args := m.Called(ctx, spreadsheetID, a1Range, value)
	return args.Error(0)
}
