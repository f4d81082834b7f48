package ingest

import (
	"context"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

// RenameColumn renames oldName to newName in table and returns the new
// column list. The schema is untouched on any validation failure.
func (s *Service) RenameColumn(ctx context.Context, table, oldName, newName string) ([]string, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, apperr.Store(err, "acquire connection")
	}
	defer conn.Close()

	ok, err := s.driver.TableExists(ctx, conn, table)
	if err != nil {
		return nil, apperr.Store(err, "inspect catalog")
	}
	if !ok {
		return nil, apperr.NotFound("table %q does not exist", table)
	}
	cols, err := s.driver.Columns(ctx, conn, table)
	if err != nil {
		return nil, apperr.Store(err, "list columns of "+table)
	}
	if !contains(cols, oldName) {
		return nil, apperr.NotFound("column %q not found in table %q", oldName, table)
	}
	if oldName == "id" {
		return nil, apperr.Validation("the identifier column %q cannot be renamed", oldName)
	}
	if !IsNormalizedColumn(newName) {
		return nil, apperr.Validation("invalid column name %q; use lowercase letters, digits and underscores", newName)
	}
	if contains(cols, newName) {
		return nil, apperr.Validation("column %q already exists in table %q", newName, table)
	}

	stmt := "ALTER TABLE " + db.QuoteIdent(table) + " RENAME COLUMN " + db.QuoteIdent(oldName) + " TO " + db.QuoteIdent(newName)
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return nil, apperr.Store(err, "rename column")
	}

	cols, err = s.driver.Columns(ctx, conn, table)
	if err != nil {
		return nil, apperr.Store(err, "list columns of "+table)
	}
	return cols, nil
}
