package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ColumnKind is the storage class inferred for an ingested column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindReal
)

// QuoteIdent double-quotes an identifier. Both engines accept the form.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// ColumnType returns the DDL type for k.
func (d Driver) ColumnType(k ColumnKind) string {
	switch k {
	case KindInteger:
		if d == DriverPostgres {
			return "BIGINT"
		}
		return "INTEGER"
	case KindReal:
		if d == DriverPostgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	default:
		return "TEXT"
	}
}

// DropTableSQL drops name if present. Postgres refuses to drop a table that
// views depend on, so dependants go with it there; sqlite keeps the view and
// re-resolves it against the replacement table.
func (d Driver) DropTableSQL(name string) string {
	if d == DriverPostgres {
		return "DROP TABLE IF EXISTS " + QuoteIdent(name) + " CASCADE"
	}
	return "DROP TABLE IF EXISTS " + QuoteIdent(name)
}

func (d Driver) relationsSQL(kind string) string {
	if d == DriverPostgres {
		typ := "BASE TABLE"
		if kind == "view" {
			typ = "VIEW"
		}
		return `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = '` + typ + `' ORDER BY table_name`
	}
	return `SELECT name FROM sqlite_master WHERE type = '` + kind + `' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (d Driver) relationExists(ctx context.Context, q Querier, kind, name string) (bool, error) {
	var query string
	if d == DriverPostgres {
		typ := "BASE TABLE"
		if kind == "view" {
			typ = "VIEW"
		}
		query = `SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = '` + typ + `' AND table_name = $1`
	} else {
		query = `SELECT 1 FROM sqlite_master WHERE type = '` + kind + `' AND name = $1`
	}
	var one int
	err := q.QueryRowContext(ctx, query, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s %q: %w", kind, name, err)
	}
	return true, nil
}

// TableExists reports whether a base table called name exists.
func (d Driver) TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	return d.relationExists(ctx, q, "table", name)
}

// ViewExists reports whether a view called name exists.
func (d Driver) ViewExists(ctx context.Context, q Querier, name string) (bool, error) {
	return d.relationExists(ctx, q, "view", name)
}

func (d Driver) Tables(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, d.relationsSQL("table"))
}

func (d Driver) Views(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, d.relationsSQL("view"))
}

// Columns lists the columns of table in declaration order, read back from
// the engine's own catalog.
func (d Driver) Columns(ctx context.Context, q Querier, table string) ([]string, error) {
	query := `SELECT name FROM pragma_table_info($1) ORDER BY cid`
	if d == DriverPostgres {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
	}
	return queryStrings(ctx, q, query, table)
}

// RowCount counts rows in table. The caller must have verified the table
// exists via the catalog.
func RowCount(ctx context.Context, q Querier, table string) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %q: %w", table, err)
	}
	return n, nil
}

func queryStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
