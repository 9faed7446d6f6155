package samplecheck

import (
	"sort"
	"strings"
)

// Type reference markers recognized in declared types.
const (
	ArrayMarker    = "[]"
	OptionalMarker = "?"
)

// Fields maps the attribute names of one record type to their declared types.
// Values returned by a TypeSchema are shared and must not be modified.
type Fields map[string]string

// Has reports whether name is a declared attribute.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Len is the number of attributes a record of this type must carry.
func (f Fields) Len() int { return len(f) }

// Declared returns the declared type of attribute name.
func (f Fields) Declared(name string) (string, bool) {
	t, ok := f[name]
	return t, ok
}

// Names returns the attribute names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TypeSchema maps qualified type names (org/module:version:Name) to their
// fields. It is immutable once built and safe for concurrent readers.
type TypeSchema struct {
	types map[string]Fields
}

// NewTypeSchema copies m into a TypeSchema.
func NewTypeSchema(m map[string]map[string]string) *TypeSchema {
	types := make(map[string]Fields, len(m))
	for name, fields := range m {
		f := make(Fields, len(fields))
		for k, v := range fields {
			f[k] = v
		}
		types[name] = f
	}
	return &TypeSchema{types: types}
}

// Lookup returns the fields of a qualified type name.
func (s *TypeSchema) Lookup(name string) (Fields, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.types[name]
	return f, ok
}

// Resolve strips type markers from declared and looks the result up. The
// stripped name is returned even when it is not found.
func (s *TypeSchema) Resolve(declared string) (string, Fields, bool) {
	name := StripTypeMarkers(declared)
	f, ok := s.Lookup(name)
	return name, f, ok
}

// Len returns the number of types.
func (s *TypeSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.types)
}

// TypeNames returns all qualified type names in sorted order.
func (s *TypeSchema) TypeNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Modules returns the distinct module directory names of all types, sorted.
// The default module is reported as "".
func (s *TypeSchema) Modules() []string {
	seen := map[string]struct{}{}
	var mods []string
	for _, n := range s.TypeNames() {
		m := ModuleOf(n)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mods = append(mods, m)
	}
	sort.Strings(mods)
	return mods
}

// StripTypeMarkers removes trailing array and optional markers, in any
// combination, from a declared type.
func StripTypeMarkers(declared string) string {
	t := strings.TrimSpace(declared)
	for {
		switch {
		case strings.HasSuffix(t, OptionalMarker):
			t = strings.TrimSpace(strings.TrimSuffix(t, OptionalMarker))
		case strings.HasSuffix(t, ArrayMarker):
			t = strings.TrimSpace(strings.TrimSuffix(t, ArrayMarker))
		default:
			return t
		}
	}
}

// IsArrayType reports whether declared carries an array marker.
func IsArrayType(declared string) bool {
	t := strings.TrimSpace(declared)
	t = strings.TrimSuffix(t, OptionalMarker)
	return strings.HasSuffix(strings.TrimSpace(t), ArrayMarker)
}

// ModuleOf returns the module directory of a qualified type name. For
// "org/pkg.sub:1.0.0:Name" it is "sub"; names in the package's default
// module ("org/pkg:1.0.0:Name") yield "".
func ModuleOf(qualified string) string {
	s := qualified
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	i := strings.Index(s, ":")
	if i < 0 {
		return ""
	}
	s = s[:i]
	if j := strings.Index(s, "."); j >= 0 {
		return s[j+1:]
	}
	return ""
}

// ShortName returns the unqualified part of a type name.
func ShortName(qualified string) string {
	if i := strings.LastIndex(qualified, ":"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
