package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

// MapResult reports how a secondary table was aligned with the primary one.
type MapResult struct {
	ItemsTableExists bool   `json:"items_table_exists"`
	ItemsRowCount    int64  `json:"items_row_count"`
	NewTableRowCount int64  `json:"new_table_row_count"`
	MappedBySequence bool   `json:"mapped_by_sequence"`
	Warning          string `json:"warning,omitempty"`
	ViewCreated      bool   `json:"view_created"`
	ViewName         string `json:"view_name,omitempty"`
}

// MapToItems (re)creates the items_with_<table> view when table has as many
// rows as the primary table. A count mismatch is reported as a warning and
// leaves any existing view untouched.
func (s *Service) MapToItems(ctx context.Context, table string) (MapResult, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return MapResult{}, apperr.Store(err, "acquire connection")
	}
	defer conn.Close()
	return s.mapToItems(ctx, conn, table)
}

func (s *Service) mapToItems(ctx context.Context, conn *sql.Conn, table string) (MapResult, error) {
	var res MapResult

	ok, err := s.driver.TableExists(ctx, conn, PrimaryTable)
	if err != nil {
		return res, apperr.Store(err, "inspect catalog")
	}
	if !ok {
		return res, apperr.NotFound("table %q does not exist; ingest it before mapping", PrimaryTable)
	}
	res.ItemsTableExists = true

	if ok, err = s.driver.TableExists(ctx, conn, table); err != nil {
		return res, apperr.Store(err, "inspect catalog")
	} else if !ok {
		return res, apperr.NotFound("table %q does not exist", table)
	}

	if res.ItemsRowCount, err = db.RowCount(ctx, conn, PrimaryTable); err != nil {
		return res, apperr.Store(err, "count items")
	}
	if res.NewTableRowCount, err = db.RowCount(ctx, conn, table); err != nil {
		return res, apperr.Store(err, "count "+table)
	}

	if table == PrimaryTable {
		res.Warning = fmt.Sprintf("%q is the primary table; nothing to map", table)
		return res, nil
	}
	if res.ItemsRowCount != res.NewTableRowCount {
		res.Warning = fmt.Sprintf("row count mismatch: %s has %d rows, %s has %d; view not created",
			PrimaryTable, res.ItemsRowCount, table, res.NewTableRowCount)
		return res, nil
	}

	// identifiers interpolated below come from the engine's catalog only
	cols, err := s.driver.Columns(ctx, conn, table)
	if err != nil {
		return res, apperr.Store(err, "list columns of "+table)
	}
	if !contains(cols, "id") {
		return res, apperr.Validation("table %q has no id column to map by", table)
	}

	orphans, err := countOrphans(ctx, conn, table)
	if err != nil {
		return res, apperr.Store(err, "compare identifiers")
	}
	if orphans > 0 {
		res.Warning = fmt.Sprintf("%d identifier(s) in %s have no counterpart in %s; mapped by row count",
			orphans, table, PrimaryTable)
	}

	view := ViewName(table)
	create := buildViewSQL(view, table, cols)
	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP VIEW IF EXISTS "+db.QuoteIdent(view)); err != nil {
			return fmt.Errorf("drop view %s: %w", view, err)
		}
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("create view %s: %w", view, err)
		}
		return nil
	})
	if err != nil {
		return res, apperr.Store(err, "materialize view "+view)
	}

	res.MappedBySequence = true
	res.ViewCreated = true
	res.ViewName = view
	return res, nil
}

func buildViewSQL(view, table string, cols []string) string {
	var b strings.Builder
	b.WriteString("CREATE VIEW ")
	b.WriteString(db.QuoteIdent(view))
	b.WriteString(" AS SELECT i.*")
	for _, c := range cols {
		if c == "id" {
			continue
		}
		fmt.Fprintf(&b, ", s.%s AS %s", db.QuoteIdent(c), db.QuoteIdent(table+"_"+c))
	}
	fmt.Fprintf(&b, " FROM %s i LEFT JOIN %s s ON s.%s = i.%s",
		db.QuoteIdent(PrimaryTable), db.QuoteIdent(table), db.QuoteIdent("id"), db.QuoteIdent("id"))
	return b.String()
}

// viewSources returns the columns of table that its mapping view selects.
// ok is false when the view or the primary table is missing, or when next,
// the replacement schema, lacks one of them.
func (s *Service) viewSources(ctx context.Context, q db.Querier, table string, next []string) (cols []string, ok bool, err error) {
	view := ViewName(table)
	if exists, err := s.driver.ViewExists(ctx, q, view); err != nil || !exists {
		return nil, false, err
	}
	if exists, err := s.driver.TableExists(ctx, q, PrimaryTable); err != nil || !exists {
		return nil, false, err
	}
	current, err := s.driver.Columns(ctx, q, table)
	if err != nil {
		return nil, false, err
	}
	selected, err := s.driver.Columns(ctx, q, view)
	if err != nil {
		return nil, false, err
	}
	for _, c := range current {
		if c == "id" || !contains(selected, table+"_"+c) {
			continue
		}
		if !contains(next, c) {
			return nil, false, nil
		}
		cols = append(cols, c)
	}
	return cols, len(current) > 0, nil
}

func countOrphans(ctx context.Context, q db.Querier, table string) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s s WHERE s."id" NOT IN (SELECT "id" FROM %s)`,
		db.QuoteIdent(table), db.QuoteIdent(PrimaryTable))).Scan(&n)
	return n, err
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
