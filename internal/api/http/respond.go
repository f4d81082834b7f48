package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mind-engage/itembank/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// writeError maps err onto its status code. Server-side failures are logged
// with the wrapped cause; the client only sees the detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	body := errorBody{Detail: err.Error(), Code: "internal"}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Detail = ae.Detail
		body.Code = string(ae.Kind)
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	} else {
		zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	respondJSON(w, status, body)
}

// intParam parses key as an integer, returning def when absent.
func intParam(r *http.Request, key string, def int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer, got %q", key, s)
	}
	return v, nil
}

// floatParam parses key as a number, returning nil when absent.
func floatParam(r *http.Request, key string) (*float64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperr.Validation("%s must be a number, got %q", key, s)
	}
	return &v, nil
}

func boolParam(r *http.Request, key string, def bool) (bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

// multiParam collects key and key[] values, skipping blanks.
func multiParam(r *http.Request, key string) []string {
	q := r.URL.Query()
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range q[k] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
