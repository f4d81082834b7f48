package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

// Result summarizes a completed load. Columns excludes the identifier column.
type Result struct {
	Table   string   `json:"table"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// Load reads the sheet at sheetIndex of the workbook at path and replaces
// table with it, schema included. Rows get identifiers 1..N in sheet order.
func (s *Service) Load(ctx context.Context, path string, sheetIndex int, table string) (Result, error) {
	if !ValidTableName(table) {
		return Result{}, apperr.Validation("invalid table name %q", table)
	}
	sh, err := ReadSheet(path, sheetIndex)
	if err != nil {
		return Result{}, err
	}
	if err := s.replaceTable(ctx, table, sh); err != nil {
		return Result{}, apperr.Store(err, fmt.Sprintf("write table %q", table))
	}
	return Result{Table: table, Rows: len(sh.Rows), Columns: sh.Columns}, nil
}

func (s *Service) replaceTable(ctx context.Context, table string, sh *Sheet) error {
	create, insert := buildTableSQL(s.driver, table, sh)
	view := ViewName(table)
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var (
			keep     bool
			viewCols []string
		)
		if table != PrimaryTable {
			var err error
			if viewCols, keep, err = s.viewSources(ctx, tx, table, sh.Columns); err != nil {
				return fmt.Errorf("inspect view %s: %w", view, err)
			}
			if _, err := tx.ExecContext(ctx, "DROP VIEW IF EXISTS "+db.QuoteIdent(view)); err != nil {
				return fmt.Errorf("drop view %s: %w", view, err)
			}
		}
		if _, err := tx.ExecContext(ctx, s.driver.DropTableSQL(table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert %s: %w", table, err)
		}
		defer stmt.Close()

		args := make([]any, len(sh.Columns)+1)
		for i, row := range sh.Rows {
			args[0] = int64(i + 1)
			copy(args[1:], row)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d into %s: %w", i+1, table, err)
			}
		}

		// a view the new schema still satisfies survives the reload; the
		// rest wait for the next MapToItems
		if keep {
			if _, err := tx.ExecContext(ctx, buildViewSQL(view, table, viewCols)); err != nil {
				return fmt.Errorf("restore view %s: %w", view, err)
			}
		}
		return nil
	})
}

func buildTableSQL(d db.Driver, table string, sh *Sheet) (create, insert string) {
	var c, cols, ph strings.Builder
	c.WriteString("CREATE TABLE ")
	c.WriteString(db.QuoteIdent(table))
	c.WriteString(" (")
	c.WriteString(db.QuoteIdent("id"))
	c.WriteString(" ")
	c.WriteString(d.ColumnType(db.KindInteger))
	c.WriteString(" PRIMARY KEY")

	cols.WriteString(db.QuoteIdent("id"))
	ph.WriteString("$1")
	for i, name := range sh.Columns {
		fmt.Fprintf(&c, ", %s %s", db.QuoteIdent(name), d.ColumnType(sh.Kinds[i]))
		fmt.Fprintf(&cols, ", %s", db.QuoteIdent(name))
		fmt.Fprintf(&ph, ", $%d", i+2)
	}
	c.WriteString(")")

	insert = "INSERT INTO " + db.QuoteIdent(table) + " (" + cols.String() + ") VALUES (" + ph.String() + ")"
	return c.String(), insert
}
