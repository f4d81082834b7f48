package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/ingest"
)

// GET /columns?table_name=items
func ColumnsHandler(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimSpace(r.URL.Query().Get("table_name"))
		if table == "" {
			table = ingest.PrimaryTable
		}
		cols, err := svc.Columns(r.Context(), table)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"table": table, "columns": cols})
	}
}

// GET /tables
func TablesHandler(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, views, err := svc.Tables(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"tables": nonNil(tables), "views": nonNil(views)})
	}
}

type renameResponse struct {
	Message       string   `json:"message"`
	Table         string   `json:"table"`
	OldName       string   `json:"old_name"`
	NewName       string   `json:"new_name"`
	Columns       []string `json:"columns"`
	ViewRecreated *bool    `json:"view_recreated,omitempty"`
	Warning       string   `json:"warning,omitempty"`
}

// GET /rename_q?table_name&old_name&new_name&recreate_view
func RenameHandler(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		table := strings.TrimSpace(q.Get("table_name"))
		oldName := strings.TrimSpace(q.Get("old_name"))
		newName := strings.TrimSpace(q.Get("new_name"))
		if table == "" || oldName == "" || newName == "" {
			writeError(w, r, apperr.Validation("table_name, old_name and new_name are required"))
			return
		}
		recreate, err := boolParam(r, "recreate_view", false)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cols, err := svc.RenameColumn(r.Context(), table, oldName, newName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := renameResponse{
			Message: "Column renamed",
			Table:   table,
			OldName: oldName,
			NewName: newName,
			Columns: cols,
		}
		if recreate && table != ingest.PrimaryTable {
			// the rename already happened; mapping problems only downgrade the response
			m, err := svc.MapToItems(r.Context(), table)
			if err != nil {
				resp.Warning = "view not recreated: " + detailOf(err)
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("table", table).Msg("recreate view")
			} else {
				resp.ViewRecreated = &m.ViewCreated
				resp.Warning = m.Warning
			}
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func detailOf(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return err.Error()
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
