package engine

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DuplicatePolicy controls how repeated keys within one object are handled.
type DuplicatePolicy int

const (
	// DupIgnore passes repeated keys through; each one counts as an attribute.
	DupIgnore DuplicatePolicy = iota
	// DupError treats a repeated key as malformed input.
	DupError
)

// ParseDuplicatePolicy maps "ignore"/"error" (or "") to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return DupIgnore, nil
	case "error":
		return DupError, nil
	}
	return DupIgnore, errors.Errorf("unknown duplicate key policy %q", s)
}

// Limits bounds what a token source may produce before the input is treated
// as malformed. Zero values disable a bound.
type Limits struct {
	MaxDepth    int
	MaxBytes    int64
	OnDuplicate DuplicatePolicy
}

func (l Limits) active() bool {
	return l.MaxDepth > 0 || l.MaxBytes > 0 || l.OnDuplicate != DupIgnore
}

// Limit codes carried by LimitError.
const (
	LimitDepth     = "max_depth"
	LimitBytes     = "max_bytes"
	LimitDuplicate = "duplicate_key"
)

// LimitError is returned by an enforcing source when a bound is crossed.
type LimitError struct {
	Code string
	Path string // JSON Pointer of the offending node
	Pos  Position
	Msg  string
}

func (e *LimitError) Error() string { return e.Msg + " at " + e.Path }

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
}

// Enforce wraps inner so that lim is applied while streaming. When lim has
// no active bound inner is returned unchanged.
func Enforce(inner TokenSource, lim Limits) TokenSource {
	if !lim.active() {
		return inner
	}
	return &enforcingSource{inner: inner, lim: lim}
}

type enforcingSource struct {
	inner TokenSource
	lim   Limits
	stack []frame
}

func (e *enforcingSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: make(map[string]struct{}), path: path}
		}
		e.stack = append(e.stack, f)
		if e.lim.MaxDepth > 0 && len(e.stack) > e.lim.MaxDepth {
			return Token{}, &LimitError{Code: LimitDepth, Path: pointerOrRoot(path), Pos: tok.Start,
				Msg: "max depth " + strconv.Itoa(e.lim.MaxDepth) + " exceeded"}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.lim.OnDuplicate == DupError {
				return Token{}, &LimitError{Code: LimitDuplicate, Path: pointerOrRoot(path), Pos: tok.Start,
					Msg: "key '" + tok.String + "' duplicated"}
			}
			top.keys[tok.String] = struct{}{}
		}
	}

	if e.lim.MaxBytes > 0 && tok.End.Offset > e.lim.MaxBytes {
		return Token{}, &LimitError{Code: LimitBytes, Path: pointerOrRoot(path), Pos: tok.Start,
			Msg: "max bytes " + strconv.FormatInt(e.lim.MaxBytes, 10) + " exceeded"}
	}
	return tok, nil
}

// pathFor returns the JSON Pointer of the node tok belongs to.
func (e *enforcingSource) pathFor(tok Token) string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	switch tok.Kind {
	case KindKey:
		top.pendingKey = tok.String
		return JoinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := JoinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return JoinPointer(top.path, top.pendingKey)
}

func (e *enforcingSource) Location() Position { return e.inner.Location() }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends one reference token to a JSON Pointer.
func JoinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
