// Package json adapts encoding/json's streaming decoder into an
// engine.TokenSource with exact token spans.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// Driver returns the encoding/json backed driver.
func Driver() eng.Driver { return driver{} }

type driver struct{}

func (driver) NewBytes(b []byte) eng.TokenSource { return NewBytes(b) }
func (driver) Name() string                      { return "encoding/json" }

type jsonSource struct {
	dec    *json.Decoder
	text   *eng.Text
	cursor *eng.Cursor
	cls    eng.Classifier
	last   eng.Position
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource {
	text := eng.NewText(b)
	dec := json.NewDecoder(bytes.NewReader(text.Body()))
	dec.UseNumber()
	return &jsonSource{dec: dec, text: text, cursor: eng.NewCursor(text)}
}

// NewReader buffers r fully and wraps it. Positions need the whole input.
func NewReader(r io.Reader) (eng.TokenSource, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read json input")
	}
	return NewBytes(b), nil
}

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, s.fail(err)
	}

	var t eng.Token
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			t.Kind = eng.KindBeginObject
			s.cls.Open(t.Kind)
		case '[':
			t.Kind = eng.KindBeginArray
			s.cls.Open(t.Kind)
		case '}':
			t.Kind = eng.KindEndObject
			s.cls.Close()
		case ']':
			t.Kind = eng.KindEndArray
			s.cls.Close()
		}
	case string:
		t.Kind = s.cls.String()
		t.String = v
	case bool:
		t.Kind = eng.KindBool
		t.Bool = v
		s.cls.Scalar()
	case json.Number:
		t.Kind = eng.KindNumber
		t.Number = string(v)
		s.cls.Scalar()
	case float64:
		t.Kind = eng.KindNumber
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		s.cls.Scalar()
	default:
		t.Kind = eng.KindNull
		s.cls.Scalar()
	}
	t.Start, t.End = s.cursor.Next(t.Kind)
	s.last = t.End
	return t, nil
}

// fail converts a decoder error into io.EOF or an *engine.SyntaxError.
func (s *jsonSource) fail(err error) error {
	if err == io.EOF {
		if s.cls.Depth() == 0 {
			return io.EOF
		}
		s.last = s.cursor.Peek()
		return &eng.SyntaxError{Pos: s.last, Msg: "unexpected end of JSON input"}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		off := se.Offset - 1
		if off < 0 {
			off = 0
		}
		s.last = s.text.BodyPosition(off)
		return &eng.SyntaxError{Pos: s.last, Msg: se.Error()}
	}
	s.last = s.cursor.Peek()
	if err == io.ErrUnexpectedEOF {
		return &eng.SyntaxError{Pos: s.last, Msg: "unexpected end of JSON input"}
	}
	return &eng.SyntaxError{Pos: s.last, Msg: err.Error()}
}

func (s *jsonSource) Location() eng.Position { return s.last }
