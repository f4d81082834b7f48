package ingest_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/itembank/internal/db"
	"github.com/mind-engage/itembank/internal/ingest"
)

type sheetData struct {
	name string
	rows [][]any
}

// writeWorkbook saves sheets (in order) to a fresh xlsx file and returns its path.
func writeWorkbook(t *testing.T, sheets ...sheetData) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			vals := row
			if err := f.SetSheetRow(sh.name, cell, &vals); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func newService(t *testing.T) (*ingest.Service, *sql.DB) {
	t.Helper()
	dsn, err := db.SQLiteDSN(filepath.Join(t.TempDir(), "items.db"))
	if err != nil {
		t.Fatal(err)
	}
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return ingest.NewService(h, db.DriverSQLite), h
}
