package ingest_test

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/mind-engage/itembank/internal/ingest"
)

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"  Item Type (all) ":        "item_type_all",
		"S5 Geometry & Measurement": "s5_geometry_measurement",
		"meanP__all":                "meanp_all",
		"b(0-1) IRT":                "b_0_1_irt",
		"b(01-2) IRT":               "b_01_2_irt",
		"___":                       "col",
		"":                          "col",
		"Käyttäjä":                  "k_ytt_j",
		"NuTa skill-level":          "nuta_skill_level",
	}
	for in, want := range cases {
		if got := ingest.NormalizeColumn(in); got != want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupeColumns(t *testing.T) {
	cases := []struct {
		in, want []string
	}{
		{[]string{"a", "b", "a", "a"}, []string{"a", "b", "a_1", "a_2"}},
		{[]string{"a", "a_1", "a"}, []string{"a", "a_1", "a_2"}},
		{[]string{"a", "a", "a_1"}, []string{"a", "a_1", "a_1_1"}},
		{[]string{"col", "col", "col"}, []string{"col", "col_1", "col_2"}},
		{nil, []string{}},
	}
	for _, c := range cases {
		if got := ingest.DedupeColumns(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("DedupeColumns(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeThenDedupeProperties(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	inputs := [][]string{
		{"Name", "name", "NAME ", "name_1", "", " ", "#"},
		{"Source", "Source", "source_1", "Source"},
		{"Ä", "Ö", "Å", "x", "X"},
	}
	for _, in := range inputs {
		norm := make([]string, len(in))
		for i, h := range in {
			norm[i] = ingest.NormalizeColumn(h)
		}
		out := ingest.DedupeColumns(norm)
		if len(out) != len(in) {
			t.Fatalf("length changed: %v -> %v", in, out)
		}
		seen := map[string]bool{}
		for i, c := range out {
			if !valid.MatchString(c) {
				t.Errorf("invalid identifier %q", c)
			}
			if seen[c] {
				t.Errorf("duplicate %q in %v", c, out)
			}
			seen[c] = true
			// first occurrences keep their normalized name
			if i == 0 && c != norm[0] {
				t.Errorf("first name rewritten: %q", c)
			}
		}
	}
}

func TestNameValidators(t *testing.T) {
	if !ingest.ValidTableName("items_NuTa_content_area") || ingest.ValidTableName("items; DROP TABLE x") || ingest.ValidTableName("1abc") {
		t.Error("ValidTableName mismatch")
	}
	if !ingest.IsNormalizedColumn("meanp_all") || ingest.IsNormalizedColumn("MeanP") || ingest.IsNormalizedColumn("_x") || ingest.IsNormalizedColumn("") {
		t.Error("IsNormalizedColumn mismatch")
	}
}
