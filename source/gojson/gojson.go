// Package gojson adapts github.com/goccy/go-json's streaming decoder into an
// engine.TokenSource with exact token spans.
package gojson

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
	"github.com/pkg/errors"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// Driver returns the go-json backed driver.
func Driver() eng.Driver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewBytes(b []byte) eng.TokenSource { return NewBytes(b) }
func (driverGoJSON) Name() string                      { return "go-json" }

type source struct {
	dec    *j.Decoder
	text   *eng.Text
	cursor *eng.Cursor
	cls    eng.Classifier
	last   eng.Position
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource {
	text := eng.NewText(b)
	dec := j.NewDecoder(bytes.NewReader(text.Body()))
	dec.UseNumber()
	return &source{dec: dec, text: text, cursor: eng.NewCursor(text)}
}

// NewReader buffers r fully and wraps it.
func NewReader(r io.Reader) (eng.TokenSource, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read json input")
	}
	return NewBytes(b), nil
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, s.fail(err)
	}

	var t eng.Token
	switch v := tok.(type) {
	case j.Delim:
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
	case j.Number:
		t.Kind = eng.KindNumber
		t.Number = string(v)
		s.cls.Scalar()
	case float64:
		t.Kind = eng.KindNumber
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		s.cls.Scalar()
	case fmt.Stringer:
		// number types of other packages
		t.Kind = eng.KindNumber
		t.Number = v.String()
		s.cls.Scalar()
	default:
		t.Kind = eng.KindNull
		s.cls.Scalar()
	}
	t.Start, t.End = s.cursor.Next(t.Kind)
	s.last = t.End
	return t, nil
}

func (s *source) fail(err error) error {
	if err == io.EOF && s.cls.Depth() == 0 {
		return io.EOF
	}
	var se *j.SyntaxError
	if errors.As(err, &se) && se.Offset > 0 {
		s.last = s.text.BodyPosition(se.Offset - 1)
		return &eng.SyntaxError{Pos: s.last, Msg: se.Error()}
	}
	s.last = s.cursor.Peek()
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &eng.SyntaxError{Pos: s.last, Msg: "unexpected end of JSON input"}
	}
	return &eng.SyntaxError{Pos: s.last, Msg: err.Error()}
}

func (s *source) Location() eng.Position { return s.last }
