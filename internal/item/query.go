package item

import (
	"strconv"
	"strings"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Columns of the difficulty and discrimination tables, projected under
// their own names.
var (
	difficultyFields = []string{
		"meanp_all_classical", "p_g3_classical", "p_g6_classical", "p_g8_classical", "p_g9_classical",
		"b_0_1_irt", "b01_2_irt", "b012_3_irt", "b0123_4_irt",
		"se_b_0_1_irt", "se_b01_2_irt", "se_b012_3_irt", "se_b0123_4_irt",
	}
	discriminationFields = []string{
		"meanrit_classical", "meang_classical", "meand_classical", "meanstd_classical", "a_irt",
	}
)

var baseSelect = buildBaseSelect()

func buildBaseSelect() string {
	var fields []string
	add := func(expr, as string) {
		if as == "" {
			fields = append(fields, expr)
			return
		}
		fields = append(fields, expr+" AS "+as)
	}
	for _, f := range []string{"id", "label", "name", "name_2", "max", "n", "source"} {
		add(col(aliasItems, f), "")
	}
	add(col(aliasType, "item_type_all"), "")
	add(col(aliasLevel, "hierarchical_level_all"), "")
	for _, f := range difficultyFields {
		add(col(aliasDifficulty, f), "")
	}
	for _, f := range discriminationFields {
		add(col(aliasDiscrimination, f), "")
	}
	for c := S1; c < NumContentAreas; c++ {
		add(c.column(), c.Key())
	}
	add(col(aliasNuta, "nuta_skill_level"), "")
	add(col(aliasNuta, "contents"), "nuta_contents")
	for c := C1; c < NumNutaContents; c++ {
		add(col(aliasNuta, c.Field()), "")
	}
	for t := T10; t < NumTargetAreas; t++ {
		add(t.column(), t.Key())
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(db.QuoteIdent(TableItems))
	b.WriteString(" " + aliasItems)
	for _, j := range auxJoins {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(db.QuoteIdent(j.table))
		b.WriteString(" " + j.alias + " ON " + col(j.alias, "id") + " = " + col(aliasItems, "id"))
	}
	return b.String()
}

// BaseSelect returns the item projection without any predicate.
func BaseSelect() string { return baseSelect }

// Filter holds the optional listing filters. Zero values mean "no filter".
type Filter struct {
	Search          string
	ItemTypes       []string
	Levels          []string
	ContentAreas    []string // short keys s1..s6
	TargetAreas     []string // short keys t10..t20
	NutaSkillLevels []string
	Sources         []string

	MeanPMin, MeanPMax     *float64
	AIRTMin, AIRTMax       *float64
	MeanRitMin, MeanRitMax *float64
}

// ListQuery is a filtered, sorted page request.
type ListQuery struct {
	Filter
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// Query is a composed listing statement plus its count companion.
type Query struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
	Page      int
	PageSize  int
}

// binder numbers $N placeholders as values are bound.
type binder struct{ args []any }

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *binder) list(vs []string) string {
	ph := make([]string, len(vs))
	for i, v := range vs {
		ph[i] = b.bind(v)
	}
	return strings.Join(ph, ", ")
}

// BuildWhere composes the predicate for f. The clause is empty when no
// filter applies; otherwise it starts with "WHERE".
func BuildWhere(f Filter) (string, []any, error) {
	var b binder
	clause, err := buildWhere(f, &b)
	return clause, b.args, err
}

func buildWhere(f Filter, b *binder) (string, error) {
	var clauses []string

	if f.Search != "" {
		p := b.bind("%" + f.Search + "%")
		var ors []string
		for _, c := range []string{col(aliasItems, "label"), col(aliasItems, "name"), col(aliasItems, "source"), col(aliasNuta, "contents")} {
			ors = append(ors, "CAST("+c+" AS TEXT) LIKE "+p)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	in := func(column string, vs []string) {
		if len(vs) > 0 {
			clauses = append(clauses, column+" IN ("+b.list(vs)+")")
		}
	}
	in(col(aliasType, "item_type_all"), f.ItemTypes)
	in(col(aliasLevel, "hierarchical_level_all"), f.Levels)

	if len(f.ContentAreas) > 0 {
		var cols []string
		for _, k := range f.ContentAreas {
			c, ok := ParseContentArea(k)
			if !ok {
				return "", apperr.Validation("invalid content_area %q; use s1..s6", k)
			}
			cols = append(cols, c.column())
		}
		clauses = append(clauses, anyPositive(cols))
	}
	if len(f.TargetAreas) > 0 {
		var cols []string
		for _, k := range f.TargetAreas {
			t, ok := ParseTargetArea(k)
			if !ok {
				return "", apperr.Validation("invalid target_area %q; use t10..t20", k)
			}
			cols = append(cols, t.column())
		}
		clauses = append(clauses, anyPositive(cols))
	}

	in(col(aliasNuta, "nuta_skill_level"), f.NutaSkillLevels)
	in(col(aliasItems, "source"), f.Sources)

	bound := func(column, op string, v *float64) {
		if v != nil {
			clauses = append(clauses, column+" "+op+" "+b.bind(*v))
		}
	}
	bound(col(aliasDifficulty, "meanp_all_classical"), ">=", f.MeanPMin)
	bound(col(aliasDifficulty, "meanp_all_classical"), "<=", f.MeanPMax)
	bound(col(aliasDiscrimination, "a_irt"), ">=", f.AIRTMin)
	bound(col(aliasDiscrimination, "a_irt"), "<=", f.AIRTMax)
	bound(col(aliasDiscrimination, "meanrit_classical"), ">=", f.MeanRitMin)
	bound(col(aliasDiscrimination, "meanrit_classical"), "<=", f.MeanRitMax)

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), nil
}

// anyPositive is true when at least one column holds a weight above zero.
func anyPositive(cols []string) string {
	seen := map[string]bool{}
	var ors []string
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		ors = append(ors, "COALESCE("+c+", 0) > 0")
	}
	return "(" + strings.Join(ors, " OR ") + ")"
}

// OrderBy resolves sortBy through the allow-list, falling back to id, and
// breaks ties by id so pages never overlap.
func OrderBy(sortBy, sortDir string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns["id"]
	}
	dir := "ASC"
	if strings.EqualFold(strings.TrimSpace(sortDir), "desc") {
		dir = "DESC"
	}
	if column == sortColumns["id"] {
		return "ORDER BY " + column + " " + dir
	}
	return "ORDER BY " + column + " " + dir + ", " + sortColumns["id"] + " ASC"
}

// Build validates paging and composes the page and count statements.
func (q ListQuery) Build() (Query, error) {
	if q.Page < 1 {
		return Query{}, apperr.Validation("page must be >= 1, got %d", q.Page)
	}
	if q.PageSize < 1 {
		return Query{}, apperr.Validation("page_size must be >= 1, got %d", q.PageSize)
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	var b binder
	where, err := buildWhere(q.Filter, &b)
	if err != nil {
		return Query{}, err
	}
	filtered := baseSelect
	if where != "" {
		filtered += " " + where
	}
	countArgs := append([]any(nil), b.args...)

	limit := b.bind(q.PageSize)
	offset := b.bind((q.Page - 1) * q.PageSize)

	return Query{
		SQL:       filtered + " " + OrderBy(q.SortBy, q.SortDir) + " LIMIT " + limit + " OFFSET " + offset,
		Args:      b.args,
		CountSQL:  "SELECT COUNT(DISTINCT t.id) FROM (" + filtered + ") t",
		CountArgs: countArgs,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}, nil
}
