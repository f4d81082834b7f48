package item

// Summary is one row of the item listing.
type Summary struct {
	ID                   int64    `json:"id"`
	Label                any      `json:"label"`
	Name                 any      `json:"name"`
	Source               any      `json:"source"`
	ItemTypeAll          any      `json:"item_type_all"`
	HierarchicalLevelAll any      `json:"hierarchical_level_all"`
	MeanPAllClassical    *float64 `json:"meanp_all_classical"`
	MeanRitClassical     *float64 `json:"meanrit_classical"`
	AIRT                 *float64 `json:"a_irt"`
	DominantContentArea  *string  `json:"dominant_content_area"`
}

type Page struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int64     `json:"total"`
	TotalPages int64     `json:"total_pages"`
	Items      []Summary `json:"items"`
}

type Nuta struct {
	SkillLevel any                `json:"nuta_skill_level"`
	Contents   any                `json:"contents"`
	Weights    map[string]float64 `json:"weights"`
}

// Detail is the full joined view of one item. Difficulty and discrimination
// are keyed by their column names.
type Detail struct {
	ID                  int64               `json:"id"`
	Label               any                 `json:"label"`
	Name                any                 `json:"name"`
	Name2               any                 `json:"name_2"`
	Max                 any                 `json:"max"`
	N                   any                 `json:"n"`
	Source              any                 `json:"source"`
	Type                any                 `json:"type"`
	HierarchicalLevel   any                 `json:"hierarchical_level"`
	Difficulty          map[string]*float64 `json:"difficulty"`
	Discrimination      map[string]*float64 `json:"discrimination"`
	ContentArea         map[string]float64  `json:"content_area"`
	Nuta                Nuta                `json:"nuta"`
	Targets             map[string]float64  `json:"targets"`
	DominantContentArea *string             `json:"dominant_content_area"`
}

// FilterValues feeds the filter widgets: observed categorical values plus
// the static catalogs.
type FilterValues struct {
	ItemTypes          []any    `json:"item_types"`
	HierarchicalLevels []any    `json:"hierarchical_levels"`
	NutaSkillLevels    []any    `json:"nuta_skill_levels"`
	Sources            []any    `json:"sources"`
	ContentAreas       []Option `json:"content_areas"`
	TargetAreas        []Option `json:"target_areas"`
	NutaContents       []Option `json:"nuta_contents"`
	SortKeys           []string `json:"sort_keys"`
}
