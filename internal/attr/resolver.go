// Package attr picks the display column of a feature collection and turns
// its values into sorted, localized display text.
package attr

import "slices"

// NamePreferences are the column names tried, in order, when guessing which
// column holds the neighborhood name. Matching is case-sensitive.
var NamePreferences = []string{
	"name", "Name", "NAME",
	"district", "District",
	"neighborhood", "Neighborhood",
	"quartier", "Quartier",
	"bezeichnung", "Bezeichnung",
	"qname", "QNAME",
	"quartiername", "Quartiername",
	"kreis", "Kreis",
}

// DefaultColumn returns the first preference present in columns, else the
// first column. It returns "" only when columns is empty.
func DefaultColumn(columns, prefs []string) string {
	for _, p := range prefs {
		if slices.Contains(columns, p) {
			return p
		}
	}
	if len(columns) == 0 {
		return ""
	}
	return columns[0]
}

// Select honours requested when it names an existing column and falls back
// to DefaultColumn otherwise.
func Select(columns []string, requested string, prefs []string) string {
	if requested != "" && slices.Contains(columns, requested) {
		return requested
	}
	return DefaultColumn(columns, prefs)
}
