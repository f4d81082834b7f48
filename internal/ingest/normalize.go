package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderColumn names a header that normalizes to nothing.
const PlaceholderColumn = "col"

var (
	nonAlnum      = regexp.MustCompile(`[^0-9a-z]+`)
	normalizedRe  = regexp.MustCompile(`^[a-z0-9_]+$`)
	tableNameRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedNames = []string{"id"}
)

// NormalizeColumn lowercases s and folds every run of characters outside
// [a-z0-9] into a single underscore, trimming underscores at both ends.
func NormalizeColumn(s string) string {
	n := strings.ToLower(strings.TrimSpace(s))
	n = nonAlnum.ReplaceAllString(n, "_")
	n = strings.Trim(n, "_")
	if n == "" {
		return PlaceholderColumn
	}
	return n
}

// DedupeColumns keeps the first occurrence of each name and suffixes later
// ones with the smallest integer not yet used for that base name nor already
// emitted literally.
func DedupeColumns(cols []string) []string {
	next := map[string]int{}
	used := map[string]bool{}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !used[c] {
			out = append(out, c)
			used[c] = true
			if next[c] == 0 {
				next[c] = 1
			}
			continue
		}
		i := next[c]
		if i == 0 {
			i = 1
		}
		for {
			candidate := c + "_" + strconv.Itoa(i)
			if !used[candidate] {
				out = append(out, candidate)
				used[candidate] = true
				next[c] = i + 1
				break
			}
			i++
		}
	}
	return out
}

// headerColumns normalizes a raw header row and makes it unique, treating
// the identifier column as already taken.
func headerColumns(raw []string) []string {
	norm := make([]string, 0, len(reservedNames)+len(raw))
	norm = append(norm, reservedNames...)
	for _, h := range raw {
		norm = append(norm, NormalizeColumn(h))
	}
	return DedupeColumns(norm)[len(reservedNames):]
}

// IsNormalizedColumn reports whether name is already in normalized form.
func IsNormalizedColumn(name string) bool {
	return normalizedRe.MatchString(name) && NormalizeColumn(name) == name
}

// ValidTableName reports whether name can be used as a target table name.
func ValidTableName(name string) bool {
	return tableNameRe.MatchString(name)
}
