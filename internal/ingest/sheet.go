package ingest

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

// TimestampLayout is how date-formatted cells are stored.
const TimestampLayout = "2006-01-02 15:04:05"

// Sheet is one worksheet decoded into typed columns. A nil cell is absent.
type Sheet struct {
	Name    string
	Columns []string
	Kinds   []db.ColumnKind
	Rows    [][]any
}

// cell is one non-blank value. Only numeric cells take part in INTEGER/REAL
// inference; any text cell makes its column TEXT.
type cell struct {
	s       string
	numeric bool
}

// cellFunc classifies the raw value at a zero-based sheet row and column.
type cellFunc func(row, col int, raw string) (cell, error)

// ReadSheet decodes the sheet at the zero-based index of the workbook at path.
// The first sheet row is the header.
func ReadSheet(path string, index int) (*Sheet, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.IO(err, "excel file not found: %s", path)
		}
		return nil, apperr.IO(err, "cannot read excel file: %s", path)
	}
	if st.IsDir() {
		return nil, apperr.IO(nil, "excel path is a directory: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.Format(err, "cannot open %s as a spreadsheet", path)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if index < 0 || index >= len(sheets) {
		return nil, apperr.IO(nil, "sheet index %d out of range: %s has %d sheet(s)", index, path, len(sheets))
	}
	name := sheets[index]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.Format(err, "cannot read rows of sheet %q", name)
	}
	cr, err := newCellReader(f, name)
	if err != nil {
		return nil, err
	}
	return decodeRows(name, rows, cr.read)
}

func decodeRows(name string, rows [][]string, read cellFunc) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, apperr.Format(nil, "sheet %q has no header row", name)
	}
	header := rows[0]
	body := rows[1:]

	width := len(header)
	for _, r := range body {
		if len(r) > width {
			width = len(r)
		}
	}
	raw := make([]string, width)
	copy(raw, header)

	// excelize drops trailing empty rows but keeps interior ones; those stay
	// so identifiers follow the spreadsheet's row order.
	cells := make([][]*cell, len(body))
	for i, r := range body {
		row := make([]*cell, width)
		for j, v := range r {
			if strings.TrimSpace(v) == "" {
				continue
			}
			c, err := read(i+1, j, v)
			if err != nil {
				return nil, err
			}
			row[j] = &c
		}
		cells[i] = row
	}

	kinds := make([]db.ColumnKind, width)
	for j := 0; j < width; j++ {
		kinds[j] = inferKind(cells, j)
	}

	out := make([][]any, len(cells))
	for i, row := range cells {
		vals := make([]any, width)
		for j, c := range row {
			if c != nil {
				vals[j] = convert(c.s, kinds[j])
			}
		}
		out[i] = vals
	}

	return &Sheet{Name: name, Columns: headerColumns(raw), Kinds: kinds, Rows: out}, nil
}

func inferKind(cells [][]*cell, col int) db.ColumnKind {
	kind := db.KindInteger
	seen := false
	for _, row := range cells {
		c := row[col]
		if c == nil {
			continue
		}
		if !c.numeric {
			return db.KindText
		}
		seen = true
		s := strings.TrimSpace(c.s)
		if kind == db.KindInteger {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = db.KindReal
		}
		if _, ok := parseFloat(s); !ok {
			return db.KindText
		}
	}
	if !seen {
		return db.KindText
	}
	return kind
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func convert(s string, k db.ColumnKind) any {
	switch k {
	case db.KindInteger:
		n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n
	case db.KindReal:
		f, _ := parseFloat(strings.TrimSpace(s))
		return f
	default:
		return s
	}
}

type cellReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	isDate   map[int]bool // by style index
}

func newCellReader(f *excelize.File, sheet string) (*cellReader, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, apperr.Format(err, "cannot read workbook properties")
	}
	cr := &cellReader{f: f, sheet: sheet, isDate: map[int]bool{}}
	if props.Date1904 != nil {
		cr.date1904 = *props.Date1904
	}
	return cr, nil
}

func (r *cellReader) read(row, col int, raw string) (cell, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return cell{}, apperr.Format(err, "bad cell position in sheet %q", r.sheet)
	}
	typ, err := r.f.GetCellType(r.sheet, ref)
	if err != nil {
		return cell{}, apperr.Format(err, "cannot read cell %s of sheet %q", ref, r.sheet)
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeBool:
	default:
		return cell{s: raw}, nil
	}

	date, err := r.dateStyled(ref)
	if err != nil {
		return cell{}, err
	}
	if date {
		if serial, ok := parseFloat(strings.TrimSpace(raw)); ok {
			if t, err := excelize.ExcelDateToTime(serial, r.date1904); err == nil {
				return cell{s: t.Round(time.Second).Format(TimestampLayout)}, nil
			}
		}
	}
	return cell{s: raw, numeric: true}, nil
}

func (r *cellReader) dateStyled(ref string) (bool, error) {
	idx, err := r.f.GetCellStyle(r.sheet, ref)
	if err != nil {
		return false, apperr.Format(err, "cannot read style of cell %s", ref)
	}
	if v, ok := r.isDate[idx]; ok {
		return v, nil
	}
	st, err := r.f.GetStyle(idx)
	if err != nil {
		return false, apperr.Format(err, "cannot read style %d", idx)
	}
	var v bool
	if st.CustomNumFmt != nil {
		v = dateFormatCode(*st.CustomNumFmt)
	} else {
		v = builtinDateFormat(st.NumFmt)
	}
	r.isDate[idx] = v
	return v, nil
}

func builtinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// dateFormatCode reports whether a custom number format renders a date or
// time. Quoted literals, escaped characters and bracketed sections other than
// elapsed-time tokens are ignored.
func dateFormatCode(code string) bool {
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '"':
			if j := strings.IndexByte(code[i+1:], '"'); j >= 0 {
				i += j + 1
			} else {
				return false
			}
		case '\\', '_', '*':
			i++
		case '[':
			j := strings.IndexByte(code[i+1:], ']')
			if j < 0 {
				return false
			}
			tok := strings.ToLower(code[i+1 : i+1+j])
			if tok != "" && strings.Trim(tok, "hms") == "" {
				return true
			}
			i += j + 1
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}
