package samplecheck

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	eng "github.com/reoring/samplecheck/internal/engine"
	gojsonsrc "github.com/reoring/samplecheck/source/gojson"
	jsonsrc "github.com/reoring/samplecheck/source/json"
)

// Token is a JSON token with its span in the input.
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Position is a 1-based line and column plus the byte offset.
type Position = eng.Position

// TokenSource yields tokens of one document.
type TokenSource = eng.TokenSource

// JSONDriver turns buffered JSON input into a TokenSource. The default
// implementation is based on encoding/json; go-json is the alternative.
type JSONDriver = eng.Driver

var drivers = map[string]func() JSONDriver{
	"encoding/json": jsonsrc.Driver,
	"go-json":       gojsonsrc.Driver,
}

// DefaultJSONDriver returns the encoding/json backed driver.
func DefaultJSONDriver() JSONDriver { return jsonsrc.Driver() }

// DriverByName resolves a driver name as accepted in configuration. "json"
// and "gojson" are accepted as short forms.
func DriverByName(name string) (JSONDriver, error) {
	switch strings.ToLower(name) {
	case "", "json", "std":
		name = "encoding/json"
	case "gojson", "goccy":
		name = "go-json"
	}
	if f, ok := drivers[name]; ok {
		return f(), nil
	}
	return nil, errors.Errorf("unknown json driver %q (available: %s)", name, strings.Join(DriverNames(), ", "))
}

// DriverNames lists the registered driver names.
func DriverNames() []string {
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
