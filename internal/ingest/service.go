// Package ingest turns spreadsheet sheets into store tables and keeps the
// items_with_<table> convenience views in step with them.
package ingest

import (
	"database/sql"

	"github.com/mind-engage/itembank/internal/db"
)

// PrimaryTable is the item-per-row table every other table aligns with.
const PrimaryTable = "items"

// ViewPrefix prefixes the views joining a secondary table onto PrimaryTable.
const ViewPrefix = "items_with_"

type Service struct {
	db     *sql.DB
	driver db.Driver
}

func NewService(h *sql.DB, driver db.Driver) *Service {
	return &Service{db: h, driver: driver}
}

// ViewName returns the view that joins table onto the primary table.
func ViewName(table string) string { return ViewPrefix + table }
