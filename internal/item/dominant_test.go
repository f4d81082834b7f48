package item_test

import (
	"testing"

	"github.com/mind-engage/itembank/internal/item"
)

func f(v float64) *float64 { return &v }

func TestDominantContentArea(t *testing.T) {
	cases := []struct {
		name    string
		weights [item.NumContentAreas]*float64
		want    string
		ok      bool
	}{
		{"all absent", [item.NumContentAreas]*float64{}, "", false},
		{"all zero", [item.NumContentAreas]*float64{f(0), f(0), f(0), f(0), f(0), f(0)}, "", false},
		{"all negative", [item.NumContentAreas]*float64{f(-1), nil, f(-0.5), nil, nil, nil}, "", false},
		{"single", [item.NumContentAreas]*float64{nil, nil, f(0.4), nil, nil, nil}, item.S3.Label(), true},
		{"max wins", [item.NumContentAreas]*float64{f(0.2), f(0.7), nil, f(0.1), nil, f(0.69)}, item.S2.Label(), true},
		{"tie goes first", [item.NumContentAreas]*float64{nil, f(1), nil, f(1), nil, nil}, item.S2.Label(), true},
		{"tie with absent zero", [item.NumContentAreas]*float64{nil, nil, nil, nil, f(2), f(2)}, item.S5.Label(), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := item.DominantContentArea(c.weights)
			if got != c.want || ok != c.ok {
				t.Fatalf("got (%q, %v), want (%q, %v)", got, ok, c.want, c.ok)
			}
		})
	}
}
