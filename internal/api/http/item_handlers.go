package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/item"
)

// GET /api/items
func ListItemsHandler(store item.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lq, err := listQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := store.ListItems(r.Context(), lq)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
	}
}

func listQuery(r *http.Request) (item.ListQuery, error) {
	lq := item.ListQuery{
		Filter: item.Filter{
			Search:          strings.TrimSpace(r.URL.Query().Get("search")),
			ItemTypes:       multiParam(r, "item_type"),
			Levels:          multiParam(r, "level"),
			ContentAreas:    multiParam(r, "content_area"),
			TargetAreas:     multiParam(r, "target_area"),
			NutaSkillLevels: multiParam(r, "nuta_skill_level"),
			Sources:         multiParam(r, "source"),
		},
		SortBy:  strings.TrimSpace(r.URL.Query().Get("sort_by")),
		SortDir: r.URL.Query().Get("sort_dir"),
	}
	var err error
	if lq.Page, err = intParam(r, "page", 1); err != nil {
		return lq, err
	}
	if lq.PageSize, err = intParam(r, "page_size", item.DefaultPageSize); err != nil {
		return lq, err
	}
	ranges := []struct {
		key string
		dst **float64
	}{
		{"meanp_min", &lq.MeanPMin},
		{"meanp_max", &lq.MeanPMax},
		{"a_irt_min", &lq.AIRTMin},
		{"a_irt_max", &lq.AIRTMax},
		{"meanrit_min", &lq.MeanRitMin},
		{"meanrit_max", &lq.MeanRitMax},
	}
	for _, rg := range ranges {
		if *rg.dst, err = floatParam(r, rg.key); err != nil {
			return lq, err
		}
	}
	return lq, nil
}

// GET /api/items/{id}
func GetItemHandler(store item.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("item id must be an integer, got %q", raw))
			return
		}
		d, err := store.GetItem(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

// GET /api/filters
func FiltersHandler(store item.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fv, err := store.Filters(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, fv)
	}
}
