package postgres

import (
	"context"
	"database/sql"

	"devtrack/internal/model"
	"devtrack/internal/repository"
)

// HistoryPostgres is a PostgreSQL implementation of repository.HistoryRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type HistoryPostgres struct {
	db *sql.DB
}

// NewHistoryPostgres creates a new HistoryPostgres repository.
func NewHistoryPostgres(db *sql.DB) *HistoryPostgres {
	return &HistoryPostgres{db: db}
}

var _ repository.HistoryRepository = (*HistoryPostgres)(nil)

// Insert stores a cell-update record and returns the stored row.
func (r *HistoryPostgres) Insert(ctx context.Context, rec *model.CellUpdate) (*model.CellUpdate, error) {
	const q = `
		INSERT INTO cell_updates (id, spreadsheet_id, device, column_name, cell_ref, old_value, new_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, spreadsheet_id, device, column_name, cell_ref, old_value, new_value, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.SpreadsheetID,
		rec.Device,
		rec.Column,
		rec.Cell,
		rec.OldValue,
		rec.NewValue,
		rec.CreatedAt,
	)
	var out model.CellUpdate
	if err := row.Scan(
		&out.ID,
		&out.SpreadsheetID,
		&out.Device,
		&out.Column,
		&out.Cell,
		&out.OldValue,
		&out.NewValue,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns cell updates using LIMIT/OFFSET pagination and a total count.
func (r *HistoryPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.CellUpdate], error) {
	const qCount = `SELECT COUNT(*) FROM cell_updates`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, spreadsheet_id, device, column_name, cell_ref, old_value, new_value, created_at
		FROM cell_updates
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CellUpdate, 0)
	for rows.Next() {
		var u model.CellUpdate
		if err := rows.Scan(
			&u.ID,
			&u.SpreadsheetID,
			&u.Device,
			&u.Column,
			&u.Cell,
			&u.OldValue,
			&u.NewValue,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.CellUpdate]{
		Items: items,
		Total: total,
	}, nil
}
