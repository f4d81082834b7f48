package item

import (
	"strings"

	"github.com/mind-engage/itembank/internal/db"
)

// Tables joined into every item projection. Each auxiliary table is keyed
// 1:1 by id with TableItems.
const (
	TableItems          = "items"
	TableType           = "items_type"
	TableLevel          = "items_hierarchical_level"
	TableDifficulty     = "items_difficulty_level"
	TableDiscrimination = "items_discrimination"
	TableContentArea    = "items_content_area"
	TableNuta           = "items_NuTa_content_area"
	TableTargetArea     = "items_target_area"
)

// Table aliases used in the projection and in predicates.
const (
	aliasItems          = "i"
	aliasType           = "it"
	aliasLevel          = "ih"
	aliasDifficulty     = "idl"
	aliasDiscrimination = "ids"
	aliasContentArea    = "ic"
	aliasNuta           = "nt"
	aliasTargetArea     = "ta"
)

type join struct{ table, alias string }

var auxJoins = []join{
	{TableType, aliasType},
	{TableLevel, aliasLevel},
	{TableDifficulty, aliasDifficulty},
	{TableDiscrimination, aliasDiscrimination},
	{TableContentArea, aliasContentArea},
	{TableNuta, aliasNuta},
	{TableTargetArea, aliasTargetArea},
}

// RequiredTables lists every table the item projection reads.
func RequiredTables() []string {
	out := []string{TableItems}
	for _, j := range auxJoins {
		out = append(out, j.table)
	}
	return out
}

func col(alias, name string) string { return alias + "." + db.QuoteIdent(name) }

// category is one entry of a static short-key catalog.
type category struct {
	key    string
	label  string
	column string
}

// Option is a short key and its label as exposed to clients.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ContentArea is one of the curriculum content areas S1..S6.
type ContentArea int

const (
	S1 ContentArea = iota
	S2
	S3
	S4
	S5
	S6
	NumContentAreas
)

var contentAreas = [...]category{
	S1: {"s1", "S1 Thinking Skills (incl. Computational Thinking)", "s1_thinking_skills_including_computational_thinking"},
	S2: {"s2", "S2 Numbers & Operations", "s2_numbers_and_operations"},
	S3: {"s3", "S3 Algebra", "s3_algebra"},
	S4: {"s4", "S4 Functions", "s4_functions"},
	S5: {"s5", "S5 Geometry & Measurement", "s5_geometry_and_measurement"},
	S6: {"s6", "S6 Data Handling, Statistics & Probability", "s6_data_handling_statistics_and_probability"},
}

// a missing trailing entry changes the array length and fails to compile
var _ [NumContentAreas]category = contentAreas

func (c ContentArea) Key() string { return contentAreas[c].key }
func (c ContentArea) Label() string { return contentAreas[c].label }
func (c ContentArea) column() string { return col(aliasContentArea, contentAreas[c].column) }

// ParseContentArea resolves a short key such as "s3".
func ParseContentArea(key string) (ContentArea, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, c := range contentAreas {
		if c.key == k {
			return ContentArea(i), true
		}
	}
	return 0, false
}

// TargetArea is one of the assessment target areas T10..T20.
type TargetArea int

const (
	T10 TargetArea = iota
	T11
	T12
	T13
	T14
	T15
	T16
	T17
	T18
	T19
	T20
	NumTargetAreas
)

var targetAreas = [...]category{
	T10: {"t10", "T10 Mental Calculations & Inferences (S1/S2)", "t10_performs_mental_calculations_and_makes_inferences_related_to_s1_and_s2"},
	T11: {"t11", "T11 Basic Calcs with Rational Numbers (S2)", "t11_performs_basic_calculations_with_rational_numbers_related_to_s2"},
	T12: {"t12", "T12 Concept of a Real Number (S2)", "t12_understands_the_concept_of_a_real_number_related_to_s2"},
	T13: {"t13", "T13 Proportions & Percentages (S2)", "t13_calculates_proportions_numbers_referring_to_percentages_and_percentages_related_to_change_and_comparison_related_to_s2"},
	T14: {"t14", "T14 Solves Equations (S3/S4)", "t14_solves_equations_related_to_s3_and_s4"},
	T15: {"t15", "T15 Interprets & Forms Functions (S3/S4)", "t15_interprets_and_forms_functions_related_to_s3_and_s4"},
	T16: {"t16", "T16 Relations between Geometric Concepts (S5)", "t16_understands_relations_between_geometric_concepts_related_to_s5"},
	T17: {"t17", "T17 Right Triangles & Circles (S5)", "t17_utilizes_properties_related_to_right_triangles_and_circles_related_to_s5"},
	T18: {"t18", "T18 Areas & Volumes (S5)", "t18_calculates_areas_and_volumes_related_to_s5"},
	T19: {"t19", "T19 Statistics & Probability (S6)", "t19_determines_statistical_measures_and_calculates_probabilities_related_to_s6"},
	T20: {"t20", "T20 Algorithmic Thinking & Programming (S1)", "t20_applies_algorithmic_thinking_and_problem_solving_including_through_programming_related_to_s1"},
}

var _ [NumTargetAreas]category = targetAreas

func (t TargetArea) Key() string { return targetAreas[t].key }
func (t TargetArea) Label() string { return targetAreas[t].label }
func (t TargetArea) column() string { return col(aliasTargetArea, targetAreas[t].column) }

// ParseTargetArea resolves a short key such as "t14".
func ParseTargetArea(key string) (TargetArea, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, c := range targetAreas {
		if c.key == k {
			return TargetArea(i), true
		}
	}
	return 0, false
}

// NutaContent is one of the NuTa content strands C1..C9.
type NutaContent int

const (
	C1 NutaContent = iota
	C2
	C3
	C4
	C5
	C6
	C7
	C8
	C9
	NumNutaContents
)

var nutaContents = [...]category{
	C1: {"c1", "C1 Numeric System", "c1_numeric_system"},
	C2: {"c2", "C2 Basic Numerical Operations", "c2_basic_numerical_operations"},
	C3: {"c3", "C3 Geometry", "c3_geometry"},
	C4: {"c4", "C4 Time & Measures", "c4_time_and_measures"},
	C5: {"c5", "C5 Fractions", "c5_fractions"},
	C6: {"c6", "C6 Decimal Numbers", "c6_decimal_numbers"},
	C7: {"c7", "C7 Percentages", "c7_percentages"},
	C8: {"c8", "C8 Circumference, Area & Volume", "c8_circumference_area_and_volume"},
	C9: {"c9", "C9 Statistics & Probability", "c9_statistics_and_probability"},
}

var _ [NumNutaContents]category = nutaContents

func (c NutaContent) Key() string { return nutaContents[c].key }
func (c NutaContent) Label() string { return nutaContents[c].label }

// Field is the physical column name, which is also the projected name.
func (c NutaContent) Field() string { return nutaContents[c].column }

func ContentAreaOptions() []Option { return options(contentAreas[:]) }
func TargetAreaOptions() []Option { return options(targetAreas[:]) }
func NutaContentOptions() []Option { return options(nutaContents[:]) }

func options(cs []category) []Option {
	out := make([]Option, len(cs))
	for i, c := range cs {
		out[i] = Option{Key: c.key, Label: c.label}
	}
	return out
}

// sortColumns is the allow-list of sortable keys. Anything else sorts by id.
var sortColumns = map[string]string{
	"id":                col(aliasItems, "id"),
	"label":             col(aliasItems, "label"),
	"name":              col(aliasItems, "name"),
	"name_2":            col(aliasItems, "name_2"),
	"source":            col(aliasItems, "source"),
	"type":              col(aliasType, "item_type_all"),
	"level":             col(aliasLevel, "hierarchical_level_all"),
	"meanp_all":         col(aliasDifficulty, "meanp_all_classical"),
	"a_irt":             col(aliasDiscrimination, "a_irt"),
	"meanrit_classical": col(aliasDiscrimination, "meanrit_classical"),
	"n":                 col(aliasItems, "n"),
}

// SortKeys lists the accepted sort_by values.
func SortKeys() []string {
	return []string{"id", "label", "name", "name_2", "source", "type", "level", "meanp_all", "a_irt", "meanrit_classical", "n"}
}
