package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohanmhetar/failsight/internal/dataset"
)

// PostgresStore loads the collections from Postgres using pgx/v5.
// Each collection maps to a table of the same name.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// LoadAll reads every collection table into memory. An entirely empty
// result is ErrNoData.
func (s *PostgresStore) LoadAll(ctx context.Context) (*dataset.Dataset, error) {
	collections := make(map[string][]dataset.Row, len(dataset.CollectionNames))

	for _, name := range dataset.CollectionNames {
		rows, err := s.loadTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		collections[name] = rows
	}

	ds := dataset.New(collections)
	if ds.Empty() {
		return nil, ErrNoData
	}
	return ds, nil
}

func (s *PostgresStore) loadTable(ctx context.Context, table string) ([]dataset.Row, error) {
	// Collection names come from the fixed CollectionNames list, never
	// from user input.
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, fd := range fields {
		cols[i] = string(fd.Name)
	}

	var out []dataset.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(dataset.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// normalizeValue coerces driver types to the scalar set Row expects.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, float64, time.Time:
		return t
	case []byte:
		return string(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

var _ Store = (*PostgresStore)(nil)
