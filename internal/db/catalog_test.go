package db_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mind-engage/itembank/internal/db"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	dsn, err := db.SQLiteDSN(filepath.Join(t.TempDir(), "nested", "items.db"))
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestSQLiteDSNCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := db.SQLiteDSN(filepath.Join(dir, "items.db")); err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]db.Driver{"": db.DriverSQLite, "sqlite3": db.DriverSQLite, "PGX": db.DriverPostgres} {
		got, err := db.ParseDriver(in)
		if err != nil || got != want {
			t.Errorf("ParseDriver(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := db.ParseDriver("oracle"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	h := openTemp(t)
	d := db.DriverSQLite

	if _, err := h.Exec(`CREATE TABLE "items_NuTa_content_area" (id INTEGER PRIMARY KEY, nuta_skill_level TEXT, c1 REAL)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.Exec(`INSERT INTO "items_NuTa_content_area" VALUES (1,'a',0.5),(2,'b',NULL)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := h.Exec(`CREATE VIEW v1 AS SELECT id FROM "items_NuTa_content_area"`); err != nil {
		t.Fatalf("view: %v", err)
	}

	ok, err := d.TableExists(ctx, h, "items_NuTa_content_area")
	if err != nil || !ok {
		t.Fatalf("TableExists = %v, %v", ok, err)
	}
	if ok, _ := d.TableExists(ctx, h, "v1"); ok {
		t.Fatal("a view is not a table")
	}
	if ok, _ := d.ViewExists(ctx, h, "v1"); !ok {
		t.Fatal("view not found")
	}

	cols, err := d.Columns(ctx, h, "items_NuTa_content_area")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if want := []string{"id", "nuta_skill_level", "c1"}; !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}

	n, err := db.RowCount(ctx, h, "items_NuTa_content_area")
	if err != nil || n != 2 {
		t.Fatalf("RowCount = %d, %v", n, err)
	}

	tables, _ := d.Tables(ctx, h)
	views, _ := d.Views(ctx, h)
	if !reflect.DeepEqual(tables, []string{"items_NuTa_content_area"}) || !reflect.DeepEqual(views, []string{"v1"}) {
		t.Fatalf("tables=%v views=%v", tables, views)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	h := openTemp(t)
	if _, err := h.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	err := db.WithTx(ctx, h, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO t VALUES (1)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if n, _ := db.RowCount(ctx, h, "t"); n != 0 {
		t.Fatalf("rollback left %d rows", n)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := db.QuoteIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("QuoteIdent = %s", got)
	}
	if db.DriverPostgres.ColumnType(db.KindReal) != "DOUBLE PRECISION" || db.DriverSQLite.ColumnType(db.KindInteger) != "INTEGER" {
		t.Fatal("unexpected column types")
	}
}
