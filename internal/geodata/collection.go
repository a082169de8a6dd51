// Package geodata loads vector polygon features and their attribute table.
//
// A FeatureCollection is built once per distinct source and never mutated
// afterwards; the Loader memoizes collections so repeated renders of the same
// unmodified source share one instance.
package geodata

import (
	"slices"

	"github.com/paulmach/orb"
)

// Record is one feature: its geometry, its feature-level id and one value per
// collection column.
type Record struct {
	ID       any
	Geometry orb.Geometry
	Values   []any
}

// FeatureCollection is an ordered set of records sharing a single attribute
// schema. Geometry is not part of Columns.
type FeatureCollection struct {
	name    string
	digest  string
	columns []string
	index   map[string]int
	records []Record
	bound   orb.Bound
	hasBox  bool
}

// Name is the file name or location the collection was loaded from.
func (fc *FeatureCollection) Name() string { return fc.name }

// Digest is the hex SHA-256 of the raw payload.
func (fc *FeatureCollection) Digest() string { return fc.digest }

// Len returns the number of records.
func (fc *FeatureCollection) Len() int { return len(fc.records) }

// Columns returns the attribute column names in first-seen order.
func (fc *FeatureCollection) Columns() []string { return slices.Clone(fc.columns) }

// HasColumn reports whether col is one of the attribute columns.
func (fc *FeatureCollection) HasColumn(col string) bool {
	_, ok := fc.index[col]
	return ok
}

// Record returns the i-th record. Its Values slice must not be modified.
func (fc *FeatureCollection) Record(i int) Record { return fc.records[i] }

// Value returns the value of col for record i.
func (fc *FeatureCollection) Value(i int, col string) (any, bool) {
	j, ok := fc.index[col]
	if !ok {
		return nil, false
	}
	return fc.records[i].Values[j], true
}

// Values returns the column's value for every record, in record order.
func (fc *FeatureCollection) Values(col string) []any {
	j, ok := fc.index[col]
	if !ok {
		return nil
	}
	out := make([]any, len(fc.records))
	for i, r := range fc.records {
		out[i] = r.Values[j]
	}
	return out
}

// Bound returns the bounding box of all non-empty geometries. ok is false
// when no record has a geometry.
func (fc *FeatureCollection) Bound() (b orb.Bound, ok bool) {
	return fc.bound, fc.hasBox
}
