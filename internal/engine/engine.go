package engine

import (
	"fmt"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "{",
	KindEndObject:   "}",
	KindBeginArray:  "[",
	KindEndArray:    "]",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "boolean",
	KindNull:        "null",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsScalar reports whether k is a string, number, boolean or null value.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool || k == KindNull
}

// Position is a location in the input. Line and Column are 1-based; Column
// counts bytes. The zero Position means unknown.
type Position struct {
	Line   int
	Column int
	Offset int64
}

// IsValid reports whether p refers to a real location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a streaming token. End is exclusive: it points just past
// the last byte of the token.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Start  Position
	End    Position
}

// Value returns the scalar payload of t as a plain Go value. Numbers keep
// their literal text.
func (t Token) Value() any {
	switch t.Kind {
	case KindString, KindKey:
		return t.String
	case KindNumber:
		return Number(t.Number)
	case KindBool:
		return t.Bool
	default:
		return nil
	}
}

// Number is a JSON number literal.
type Number string

// MarshalJSON writes the literal unchanged.
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	// Location returns the best known position of the source: the end of the
	// most recent token, or the failure point after an error.
	Location() Position
}

// SyntaxError reports malformed input at a position.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// Driver turns buffered JSON input into a TokenSource.
type Driver interface {
	NewBytes(b []byte) TokenSource
	Name() string
}
