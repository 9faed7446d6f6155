package samplecheck

import (
	"sort"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// Number is a JSON number literal as it appeared in the sample.
type Number = eng.Number

// Record is one sample object as read from a file. Nested records are Record
// values, arrays are []any and numbers keep their literal text.
type Record map[string]any

// Records groups sample records by qualified type name. Within a type,
// records keep the order in which they were read.
type Records map[string][]Record

func (rs Records) add(typeName string, r Record) {
	rs[typeName] = append(rs[typeName], r)
}

// Merge appends every record of other after the records already held.
func (rs Records) Merge(other Records) {
	for _, name := range other.TypeNames() {
		rs[name] = append(rs[name], other[name]...)
	}
}

// TypeNames returns the type names that have records, sorted.
func (rs Records) TypeNames() []string {
	names := make([]string, 0, len(rs))
	for n := range rs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of records.
func (rs Records) Len() int {
	n := 0
	for _, list := range rs {
		n += len(list)
	}
	return n
}
