package ingest_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/ingest"
)

func TestRunMappingNeedsPrimaryTable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	path := writeWorkbook(t, difficultySheet(4))

	_, err := svc.Run(ctx, ingest.Request{Path: path, Table: "items_difficulty_level", MapToItems: true})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if ok, _, err := svc.TableStats(ctx, "items_difficulty_level"); err != nil || ok {
		t.Fatalf("table written despite failed precondition (exists=%v, err=%v)", ok, err)
	}
}

func TestRunLoadsAndMaps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first, err := svc.Run(ctx, ingest.Request{Path: writeWorkbook(t, itemSheet), Table: "items"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.Rows != 4 || first.MapResult != nil {
		t.Fatalf("report = %+v", first)
	}
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"ingest_id", "message", "table", "rows", "columns"} {
		if _, ok := body[k]; !ok {
			t.Errorf("missing %q in %s", k, raw)
		}
	}
	if _, ok := body["view_created"]; ok {
		t.Errorf("mapping fields present without mapping: %s", raw)
	}

	rep, err := svc.Run(ctx, ingest.Request{Path: writeWorkbook(t, difficultySheet(4)), Table: "items_difficulty_level", MapToItems: true})
	if err != nil {
		t.Fatal(err)
	}
	if rep.MapResult == nil || !rep.ViewCreated || rep.ViewName != "items_with_items_difficulty_level" {
		t.Fatalf("map result = %+v", rep.MapResult)
	}
	if rep.ID == first.ID {
		t.Fatal("run ids must differ")
	}

	exists, rows, err := svc.TableStats(ctx, "items")
	if err != nil || !exists || rows != 4 {
		t.Fatalf("stats = %v %d %v", exists, rows, err)
	}
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	path := writeWorkbook(t, itemSheet)

	for _, req := range []ingest.Request{
		{Path: path, Table: "items; drop"},
		{Path: path, Table: "items", SheetIndex: -1},
	} {
		if _, err := svc.Run(ctx, req); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("%+v: want validation, got %v", req, err)
		}
	}
	if _, err := svc.Run(ctx, ingest.Request{Path: path + ".missing", Table: "items"}); !apperr.Is(err, apperr.KindIO) {
		t.Errorf("missing file: %v", err)
	}
}
