package repository

import (
	"context"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// querier is satisfied by the driver and by its transactions.
type querier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

var _ querier = (dialect.Tx)(nil)

type builder interface {
	Query() (string, []any)
}

func execB(ctx context.Context, q querier, b builder) error {
	query, args := b.Query()
	return q.Exec(ctx, query, args, nil)
}

// scanAll runs a select and calls scan for every row.
func scanAll(ctx context.Context, q querier, b builder, scan func(*entsql.Rows) error) error {
	query, args := b.Query()
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// nullable unwraps optional values so drivers only see plain types or nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
