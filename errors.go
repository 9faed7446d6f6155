package samplecheck

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/reoring/samplecheck/i18n"
)

// Diagnostic codes.
const (
	CodeUnknownAttributeName  = "unknown_attribute_name"
	CodeInvalidAttributeCount = "invalid_attribute_count"
	CodeInvalidJSONContent    = "invalid_json_content"
	CodeUnexpectedJSONToken   = "unexpected_json_token"
	CodeUnresolvableTypeName  = "unresolvable_type_name"
)

// Stable diagnostic identifiers, kept compatible with earlier tooling.
var diagnosticIDs = map[string]string{
	CodeUnknownAttributeName:  "DME0001",
	CodeInvalidAttributeCount: "DME0002",
	CodeInvalidJSONContent:    "DME0003",
	CodeUnexpectedJSONToken:   "DME0004",
	CodeUnresolvableTypeName:  "DME0006",
}

// Parameter keys used in Diagnostic.Params.
const (
	ParamType     = "type"
	ParamField    = "field"
	ParamExpected = "expected"
	ParamFound    = "found"
	ParamDetail   = "detail"
	ParamToken    = "token"
)

// Diagnostic is a single finding about a sample file. Start and End delimit
// the offending span; End is exclusive.
type Diagnostic struct {
	Code   string
	File   string
	Path   string // JSON Pointer of the offending node.
	Start  Position
	End    Position
	Params map[string]string
}

// ID returns the stable identifier of d's code (for example DME0002).
func (d Diagnostic) ID() string { return diagnosticIDs[d.Code] }

// Message renders d through the current translator.
func (d Diagnostic) Message() string { return i18n.T(d.Code, d.Params) }

// String formats d as "file:line:col: ID message".
func (d Diagnostic) String() string {
	b := &strings.Builder{}
	if d.File != "" {
		b.WriteString(d.File)
		b.WriteByte(':')
	}
	if d.Start.IsValid() {
		fmt.Fprintf(b, "%d:%d:", d.Start.Line, d.Start.Column)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if id := d.ID(); id != "" {
		b.WriteString(id)
		b.WriteByte(' ')
	}
	b.WriteString(d.Message())
	return b.String()
}

// Diagnostics is an ordered list of findings that implements error.
type Diagnostics []Diagnostic

// Error summarizes the first few diagnostics.
func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(ds)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s:%s", ds[i].Code, ds[i].File, ds[i].Start)
	}
	if len(ds) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(ds))
	}
	return b.String()
}

// Count returns how many diagnostics carry code.
func (ds Diagnostics) Count(code string) int {
	n := 0
	for _, d := range ds {
		if d.Code == code {
			n++
		}
	}
	return n
}

// AsDiagnostics extracts Diagnostics from an error.
func AsDiagnostics(err error) (Diagnostics, bool) {
	if err == nil {
		return nil, false
	}
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	return nil, false
}
