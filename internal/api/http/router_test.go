package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	api "github.com/mind-engage/itembank/internal/api/http"
	"github.com/mind-engage/itembank/internal/db"
	"github.com/mind-engage/itembank/internal/ingest"
	"github.com/mind-engage/itembank/internal/item"
	"github.com/mind-engage/itembank/internal/storage"
)

type env struct {
	handler http.Handler
	dbh     *sql.DB
	dataDir string
}

func newEnv(t *testing.T, store item.Store, def api.IngestDefaults) *env {
	t.Helper()
	dir := t.TempDir()
	dsn, err := db.SQLiteDSN(filepath.Join(dir, "items.db"))
	if err != nil {
		t.Fatal(err)
	}
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	dataDir := filepath.Join(dir, "data")
	src, err := storage.NewFSStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if store == nil {
		store = item.NewSQLStore(h, db.DriverSQLite)
	}
	return &env{
		handler: api.NewRouter(api.Deps{
			Ingest:   ingest.NewService(h, db.DriverSQLite),
			Items:    store,
			Sources:  src,
			Logger:   zerolog.Nop(),
			Defaults: def,
		}),
		dbh:     h,
		dataDir: dataDir,
	}
}

func (e *env) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL, rec.Body.String(), err)
	}
	return rec.Code, body
}

func (e *env) get(t *testing.T, target string) (int, map[string]any) {
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (e *env) postJSON(t *testing.T, target string, v any) (int, map[string]any) {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

// workbook writes a single-sheet xlsx into dir.
func workbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		vals := row
		if err := f.SetSheetRow("Sheet1", cell, &vals); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

var itemRows = [][]any{
	{"Label", "Name", "Source"},
	{"M01", "Fractions", "DigiArvi 2024"},
	{"M02", "Area", "DigiArvi 2025"},
	{"M03", "Probability", "DigiArvi 2025"},
}

var difficultyRows = [][]any{
	{"MeanP (all) classical", "Old Name"},
	{0.4, 1},
	{0.6, 2},
	{0.8, 3},
}

func TestIngestRenameAndCatalog(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{})
	dir := t.TempDir()

	code, body := e.postJSON(t, "/ingest", map[string]any{
		"excel_path":  workbook(t, dir, "items.xlsx", itemRows),
		"sheet_index": 0,
	})
	if code != http.StatusOK || body["rows"] != 3.0 || body["table"] != "items" || body["ingest_id"] == "" {
		t.Fatalf("ingest items: %d %v", code, body)
	}

	code, body = e.get(t, "/columns")
	if code != http.StatusOK || !strings.Contains(toJSON(body["columns"]), `"label"`) {
		t.Fatalf("columns: %d %v", code, body)
	}

	code, body = e.postJSON(t, "/ingest", map[string]any{
		"excel_path":   workbook(t, dir, "difficulty.xlsx", difficultyRows),
		"sheet_index":  0,
		"table_name":   "items_difficulty_level",
		"map_to_items": true,
	})
	if code != http.StatusOK || body["view_created"] != true || body["view_name"] != "items_with_items_difficulty_level" {
		t.Fatalf("ingest difficulty: %d %v", code, body)
	}

	code, body = e.get(t, "/tables")
	if code != http.StatusOK || !strings.Contains(toJSON(body["views"]), "items_with_items_difficulty_level") {
		t.Fatalf("tables: %d %v", code, body)
	}

	q := url.Values{"table_name": {"items_difficulty_level"}, "old_name": {"old_name"}, "new_name": {"p_g3_classical"}, "recreate_view": {"true"}}
	code, body = e.get(t, "/rename_q?"+q.Encode())
	if code != http.StatusOK || body["view_recreated"] != true || !strings.Contains(toJSON(body["columns"]), "p_g3_classical") {
		t.Fatalf("rename: %d %v", code, body)
	}

	code, body = e.get(t, "/columns?table_name=items_with_items_difficulty_level")
	if code != http.StatusOK || !strings.Contains(toJSON(body["columns"]), "items_difficulty_level_p_g3_classical") {
		t.Fatalf("view columns: %d %v", code, body)
	}

	q.Set("old_name", "meanp_all_classical")
	code, body = e.get(t, "/rename_q?"+q.Encode())
	if code != http.StatusBadRequest || body["code"] != "validation" {
		t.Fatalf("collision: %d %v", code, body)
	}

	q.Set("old_name", "nope")
	if code, _ = e.get(t, "/rename_q?"+q.Encode()); code != http.StatusNotFound {
		t.Fatalf("missing column: %d", code)
	}
	if code, _ = e.get(t, "/columns?table_name=ghost"); code != http.StatusNotFound {
		t.Fatalf("missing table columns: %d", code)
	}
}

func TestIngestErrors(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{})
	dir := t.TempDir()

	cases := []struct {
		name string
		body any
		code int
		kind string
	}{
		{"no path and no default", map[string]any{}, http.StatusBadRequest, "validation"},
		{"missing file", map[string]any{"excel_path": filepath.Join(dir, "nope.xlsx")}, http.StatusBadRequest, "io"},
		{"bad table name", map[string]any{"excel_path": workbook(t, dir, "a.xlsx", itemRows), "table_name": "x y"}, http.StatusBadRequest, "validation"},
		{"mapping without items", map[string]any{
			"excel_path":   workbook(t, dir, "b.xlsx", difficultyRows),
			"sheet_index":  0,
			"table_name":   "items_difficulty_level",
			"map_to_items": true,
		}, http.StatusNotFound, "not_found"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, body := e.postJSON(t, "/ingest", c.body)
			if code != c.code || body["code"] != c.kind || body["detail"] == "" {
				t.Fatalf("got %d %v", code, body)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader("{"))
	if code, body := e.do(t, req); code != http.StatusBadRequest {
		t.Fatalf("bad json: %d %v", code, body)
	}
}

func TestIngestDefaultPathAndQueryMirror(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{ExcelPath: "bank.xlsx", SheetIndex: 0})
	workbook(t, e.dataDir, "bank.xlsx", itemRows)

	code, body := e.get(t, "/ingest")
	if code != http.StatusOK || body["rows"] != 3.0 {
		t.Fatalf("default path: %d %v", code, body)
	}
	if code, body = e.get(t, "/ingest?sheet_index=7"); code != http.StatusBadRequest || body["code"] != "io" {
		t.Fatalf("sheet out of range: %d %v", code, body)
	}
	if code, _ = e.get(t, "/ingest?map_to_items=maybe"); code != http.StatusBadRequest {
		t.Fatalf("bad bool: %d", code)
	}
}

func TestIngestUpload(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{SheetIndex: 1})
	src, err := os.ReadFile(workbook(t, t.TempDir(), "upload.xlsx", itemRows))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "Item bank.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(src)
	mw.WriteField("sheet_index", "0")
	mw.WriteField("table_name", "items")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := e.do(t, req)
	if code != http.StatusOK || body["rows"] != 3.0 {
		t.Fatalf("upload: %d %v", code, body)
	}
	entries, err := os.ReadDir(filepath.Join(e.dataDir, "uploads"))
	if err != nil || len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "Item_bank.xlsx") {
		t.Fatalf("uploads dir: %v %v", entries, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/ingest/upload", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	if code, _ := e.do(t, req); code != http.StatusBadRequest {
		t.Fatalf("non-multipart: %d", code)
	}
}

func TestItemsNeedEveryTable(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{})
	if code, body := e.get(t, "/api/filters"); code != http.StatusNotFound {
		t.Fatalf("filters before ingest: %d %v", code, body)
	}

	code, _ := e.postJSON(t, "/ingest", map[string]any{"excel_path": workbook(t, t.TempDir(), "items.xlsx", itemRows), "sheet_index": 0})
	if code != http.StatusOK {
		t.Fatalf("ingest: %d", code)
	}

	code, body := e.get(t, "/api/items")
	if code != http.StatusNotFound || !strings.Contains(body["detail"].(string), item.TableType) {
		t.Fatalf("items without aux tables: %d %v", code, body)
	}
	code, body = e.get(t, "/api/filters")
	if code != http.StatusOK || toJSON(body["sources"]) != `["DigiArvi 2024","DigiArvi 2025"]` || toJSON(body["item_types"]) != `[]` {
		t.Fatalf("filters: %d %v", code, body)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t, nil, api.IngestDefaults{})
	code, body := e.get(t, "/api/health")
	if code != http.StatusOK || body["status"] != "ok" || body["items_table_exists"] != false || body["db_driver"] != "sqlite" {
		t.Fatalf("health: %d %v", code, body)
	}
	e.dbh.Close()
	code, body = e.get(t, "/api/health")
	if code != http.StatusInternalServerError || body["status"] != "error" || body["detail"] == "" {
		t.Fatalf("health after close: %d %v", code, body)
	}
}

func toJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
