package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/ingest"
	"github.com/mind-engage/itembank/internal/storage"
)

// maxUploadBytes caps multipart uploads kept in memory; larger parts spill to disk.
const maxUploadBytes = 32 << 20

// IngestDefaults fills in what an ingestion request leaves out.
type IngestDefaults struct {
	ExcelPath  string
	SheetIndex int
}

type ingestBody struct {
	ExcelPath  string `json:"excel_path"`
	SheetIndex *int   `json:"sheet_index"`
	TableName  string `json:"table_name"`
	MapToItems bool   `json:"map_to_items"`
}

func (b ingestBody) request(def IngestDefaults) ingest.Request {
	req := ingest.Request{
		Path:       strings.TrimSpace(b.ExcelPath),
		SheetIndex: def.SheetIndex,
		Table:      strings.TrimSpace(b.TableName),
		MapToItems: b.MapToItems,
	}
	if req.Path == "" {
		req.Path = def.ExcelPath
	}
	if b.SheetIndex != nil {
		req.SheetIndex = *b.SheetIndex
	}
	if req.Table == "" {
		req.Table = ingest.PrimaryTable
	}
	return req
}

// POST /ingest (JSON body) and GET /ingest (query parameters)
func IngestHandler(svc *ingest.Service, src storage.SourceStore, def IngestDefaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ingestBody
		var err error
		if r.Method == http.MethodGet {
			body, err = ingestQuery(r)
		} else {
			err = json.NewDecoder(r.Body).Decode(&body)
			if errors.Is(err, io.EOF) {
				err = nil
			} else if err != nil {
				err = apperr.Validation("bad json: %v", err)
			}
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		req := body.request(def)
		if req.Path == "" {
			writeError(w, r, apperr.Validation("excel_path is required and no default is configured"))
			return
		}
		if req.Path, err = src.Resolve(req.Path); err != nil {
			writeError(w, r, err)
			return
		}
		runIngest(w, r, svc, req)
	}
}

func ingestQuery(r *http.Request) (ingestBody, error) {
	q := r.URL.Query()
	b := ingestBody{ExcelPath: q.Get("excel_path"), TableName: q.Get("table_name")}
	if s := strings.TrimSpace(q.Get("sheet_index")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return b, apperr.Validation("sheet_index must be an integer, got %q", s)
		}
		b.SheetIndex = &n
	}
	m, err := boolParam(r, "map_to_items", false)
	if err != nil {
		return b, err
	}
	b.MapToItems = m
	return b, nil
}

// POST /ingest/upload (multipart: file=workbook.xlsx, sheet_index, table_name, map_to_items)
func IngestUploadHandler(svc *ingest.Service, src storage.SourceStore, def IngestDefaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, r, apperr.Validation("multipart form required: %v", err))
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, apperr.Validation("file required"))
			return
		}
		defer f.Close()

		body := ingestBody{TableName: r.FormValue("table_name")}
		if s := strings.TrimSpace(r.FormValue("sheet_index")); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, r, apperr.Validation("sheet_index must be an integer, got %q", s))
				return
			}
			body.SheetIndex = &n
		}
		if s := strings.TrimSpace(r.FormValue("map_to_items")); s != "" {
			m, err := strconv.ParseBool(s)
			if err != nil {
				writeError(w, r, apperr.Validation("map_to_items must be a boolean, got %q", s))
				return
			}
			body.MapToItems = m
		}

		path, err := src.SaveUpload(hdr.Filename, f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		body.ExcelPath = path
		runIngest(w, r, svc, body.request(def))
	}
}

func runIngest(w http.ResponseWriter, r *http.Request, svc *ingest.Service, req ingest.Request) {
	rep, err := svc.Run(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}
