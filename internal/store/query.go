package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/value"
)

// Select runs a select query and returns its rows in result order.
// Every row holds every projected alias; SQL NULL is value.Null.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Select(ctx context.Context, q queryir.Select) ([]queryir.Row, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return nil, err
	}
	query, args, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.From.Name, err)
	}
	defer rows.Close()

	kinds := make(map[string]value.Kind, len(q.Columns))
	for _, c := range q.Columns {
		kinds[c.Alias] = c.Kind
	}

	result, err := scanRows(rows, kinds)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", q.From.Name, err)
	}
	return result, nil
}

// Count runs a count query.
func (s *Store) Count(ctx context.Context, q queryir.Count) (int64, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return 0, err
	}
	query, args, err := s.compiler.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Select.From.Name, err)
	}
	return n, nil
}

func scanRows(rows *sql.Rows, kinds map[string]value.Kind) ([]queryir.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	result := []queryir.Row{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(queryir.Row, len(cols))
		for i, name := range cols {
			v, err := value.FromDriver(kinds[name], raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			row[name] = v
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
