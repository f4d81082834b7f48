package item

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(h *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: h, driver: driver}
}

// conn hands out a connection scoped to one call; callers must Close it.
func (s *SQLStore) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, apperr.Store(err, "acquire connection")
	}
	return c, nil
}

func (s *SQLStore) requireTables(ctx context.Context, q db.Querier) error {
	for _, t := range RequiredTables() {
		ok, err := s.driver.TableExists(ctx, q, t)
		if err != nil {
			return apperr.Store(err, "inspect catalog")
		}
		if !ok {
			return apperr.NotFound("table %q does not exist; run ingestion first", t)
		}
	}
	return nil
}

func (s *SQLStore) ListItems(ctx context.Context, lq ListQuery) (Page, error) {
	q, err := lq.Build()
	if err != nil {
		return Page{}, err
	}

	c, err := s.conn(ctx)
	if err != nil {
		return Page{}, err
	}
	defer c.Close()

	if err := s.requireTables(ctx, c); err != nil {
		return Page{}, err
	}

	rows, err := c.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return Page{}, apperr.Store(err, "query items")
	}
	recs, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return Page{}, apperr.Store(err, "scan items")
	}

	var total int64
	if err := c.QueryRowContext(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return Page{}, apperr.Store(err, "count items")
	}

	items := make([]Summary, 0, len(recs))
	for _, r := range recs {
		items = append(items, Summary{
			ID:                   r.id(),
			Label:                r["label"],
			Name:                 r["name"],
			Source:               r["source"],
			ItemTypeAll:          r["item_type_all"],
			HierarchicalLevelAll: r["hierarchical_level_all"],
			MeanPAllClassical:    r.float("meanp_all_classical"),
			MeanRitClassical:     r.float("meanrit_classical"),
			AIRT:                 r.float("a_irt"),
			DominantContentArea:  r.dominant(),
		})
	}

	size := int64(q.PageSize)
	return Page{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Items:      items,
	}, nil
}

func (s *SQLStore) GetItem(ctx context.Context, id int64) (Detail, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return Detail{}, err
	}
	defer c.Close()

	if err := s.requireTables(ctx, c); err != nil {
		return Detail{}, err
	}

	rows, err := c.QueryContext(ctx, baseSelect+" WHERE "+col(aliasItems, "id")+" = $1 LIMIT 1", id)
	if err != nil {
		return Detail{}, apperr.Store(err, "query item")
	}
	recs, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return Detail{}, apperr.Store(err, "scan item")
	}
	if len(recs) == 0 {
		return Detail{}, apperr.NotFound("item %d not found", id)
	}
	return detailFrom(recs[0]), nil
}

func detailFrom(r record) Detail {
	d := Detail{
		ID:                  r.id(),
		Label:               r["label"],
		Name:                r["name"],
		Name2:               r["name_2"],
		Max:                 r["max"],
		N:                   r["n"],
		Source:              r["source"],
		Type:                r["item_type_all"],
		HierarchicalLevel:   r["hierarchical_level_all"],
		Difficulty:          map[string]*float64{},
		Discrimination:      map[string]*float64{},
		ContentArea:         map[string]float64{},
		Targets:             map[string]float64{},
		DominantContentArea: r.dominant(),
		Nuta: Nuta{
			SkillLevel: r["nuta_skill_level"],
			Contents:   r["nuta_contents"],
			Weights:    map[string]float64{},
		},
	}
	for _, f := range difficultyFields {
		d.Difficulty[f] = r.float(f)
	}
	for _, f := range discriminationFields {
		d.Discrimination[f] = r.float(f)
	}
	for c := S1; c < NumContentAreas; c++ {
		d.ContentArea[fmt.Sprintf("S%d", int(c)+1)] = r.weight(c.Key())
	}
	for c := C1; c < NumNutaContents; c++ {
		d.Nuta.Weights[c.Field()] = r.weight(c.Field())
	}
	for t := T10; t < NumTargetAreas; t++ {
		d.Targets[t.Key()] = r.weight(t.Key())
	}
	return d
}

// Filters returns observed categorical values. An auxiliary table that has
// not been ingested yet contributes an empty list.
func (s *SQLStore) Filters(ctx context.Context) (FilterValues, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return FilterValues{}, err
	}
	defer c.Close()

	ok, err := s.driver.TableExists(ctx, c, TableItems)
	if err != nil {
		return FilterValues{}, apperr.Store(err, "inspect catalog")
	}
	if !ok {
		return FilterValues{}, apperr.NotFound("table %q does not exist; run ingestion first", TableItems)
	}

	out := FilterValues{
		ContentAreas: ContentAreaOptions(),
		TargetAreas:  TargetAreaOptions(),
		NutaContents: NutaContentOptions(),
		SortKeys:     SortKeys(),
	}
	targets := []struct {
		table, column string
		dst           *[]any
	}{
		{TableType, "item_type_all", &out.ItemTypes},
		{TableLevel, "hierarchical_level_all", &out.HierarchicalLevels},
		{TableNuta, "nuta_skill_level", &out.NutaSkillLevels},
		{TableItems, "source", &out.Sources},
	}
	for _, t := range targets {
		vals, err := s.distinct(ctx, c, t.table, t.column)
		if err != nil {
			return FilterValues{}, err
		}
		*t.dst = vals
	}
	return out, nil
}

func (s *SQLStore) distinct(ctx context.Context, c *sql.Conn, table, column string) ([]any, error) {
	out := []any{}
	ok, err := s.driver.TableExists(ctx, c, table)
	if err != nil {
		return nil, apperr.Store(err, "inspect catalog")
	}
	if !ok {
		return out, nil
	}
	q := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY 1",
		db.QuoteIdent(column), db.QuoteIdent(table), db.QuoteIdent(column))
	rows, err := c.QueryContext(ctx, q)
	if err != nil {
		return nil, apperr.Store(err, "distinct "+table+"."+column)
	}
	defer rows.Close()
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, apperr.Store(err, "scan "+column)
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "scan "+column)
	}
	return out, nil
}
