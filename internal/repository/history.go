package repository

import (
	"context"

	"devtrack/internal/model"
)

// HistoryRepository defines data access for cell-update audit records using
// SQL queries only. No business logic here — strictly persistence operations.
type HistoryRepository interface {
	// Insert stores a new cell-update record.
	// Returns the stored record (may include values set by the DB).
	Insert(ctx context.Context, rec *model.CellUpdate) (*model.CellUpdate, error)

	// List returns a paginated list of cell updates, newest first, and the
	// total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.CellUpdate], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
