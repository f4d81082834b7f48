package item

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

// record is one scanned row keyed by column name.
type record map[string]any

func scanRecords(rows *sql.Rows) ([]record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				r[c] = string(b)
			} else {
				r[c] = vals[i]
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r record) id() int64 {
	switch v := r["id"].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// float returns the column as a number, or nil when absent or unparseable.
func (r record) float(key string) *float64 {
	f, ok := toFloat(r[key])
	if !ok {
		return nil
	}
	return &f
}

// weight treats absent and unparseable values as zero.
func (r record) weight(key string) float64 {
	f, _ := toFloat(r[key])
	return f
}

func (r record) contentWeights() [NumContentAreas]*float64 {
	var w [NumContentAreas]*float64
	for c := S1; c < NumContentAreas; c++ {
		w[c] = r.float(c.Key())
	}
	return w
}

func (r record) dominant() *string {
	label, ok := DominantContentArea(r.contentWeights())
	if !ok {
		return nil
	}
	return &label
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case int:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
