package samplecheck

import (
	"context"
	"io"
	"strconv"
	"strings"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// ValidateOpt configures a single document validation.
type ValidateOpt struct {
	// File is recorded on every diagnostic.
	File string
	// SkipUnknownTypes silently skips documents whose top-level type name is
	// not in the schema instead of reporting CodeUnresolvableTypeName.
	SkipUnknownTypes bool
}

// Validate checks one sample document read from src against schema. Findings
// are appended to sink in token order; records that validated cleanly are
// returned grouped by type name. A tokenizer failure is returned as an error
// and ends the document; findings made before it stay in sink.
func Validate(ctx context.Context, schema *TypeSchema, src TokenSource, sink *Collector, opt ValidateOpt) (Records, error) {
	v := &validator{
		schema:  schema,
		sink:    sink,
		opt:     opt,
		records: Records{},
	}
	if err := v.run(ctx, src); err != nil {
		return nil, err
	}
	return v.records, nil
}

type frameKind int

const (
	// documentFrame is the outermost {"<typeName>": ...} wrapper.
	documentFrame frameKind = iota
	// recordFrame is an object validated against a schema.
	recordFrame
	// arrayFrame is a transparent array; elements inherit elementType.
	arrayFrame
	// opaqueFrame is an object captured without validation.
	opaqueFrame
)

// frame is one open container. Record frames carry the counters that are
// checked when the object closes.
type frame struct {
	kind frameKind
	path string

	typeName               string
	fields                 Fields
	expectedAttributeCount int
	seenAttributeCount     int
	lastFieldName          string
	startPosition          Position
	record                 Record

	elementType string
	opaque      bool
	items       []any
	nextIndex   int

	// failed is set when this container or a descendant produced a finding.
	failed bool
}

type validator struct {
	schema  *TypeSchema
	sink    *Collector
	opt     ValidateOpt
	stack   []frame
	records Records
	stopped bool
}

const cancelCheckInterval = 1024

func (v *validator) run(ctx context.Context, src TokenSource) error {
	for n := 1; !v.stopped; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := src.NextToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		v.step(tok)
	}
	return nil
}

func (v *validator) step(tok Token) {
	if len(v.stack) == 0 {
		v.atTopLevel(tok)
		return
	}
	top := v.top()
	switch top.kind {
	case documentFrame:
		v.inDocument(top, tok)
	case recordFrame:
		v.inRecord(top, tok)
	case arrayFrame:
		v.inArray(top, tok)
	case opaqueFrame:
		v.inOpaque(top, tok)
	}
}

func (v *validator) top() *frame { return &v.stack[len(v.stack)-1] }

func (v *validator) push(f frame) { v.stack = append(v.stack, f) }

func (v *validator) pop() frame {
	f := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return f
}

// atTopLevel accepts only the opening brace of a document wrapper.
func (v *validator) atTopLevel(tok Token) {
	if tok.Kind != TokenBeginObject {
		v.unexpected("", tok)
		v.stopped = true
		return
	}
	v.push(frame{kind: documentFrame, startPosition: tok.Start})
}

// inDocument handles the wrapper object: each key names a type whose
// samples follow as an array of records or a single record.
func (v *validator) inDocument(doc *frame, tok Token) {
	switch tok.Kind {
	case TokenKey:
		doc.lastFieldName = tok.String
		doc.path = ""
		fields, ok := v.schema.Lookup(tok.String)
		if !ok {
			if !v.opt.SkipUnknownTypes {
				v.report(CodeUnresolvableTypeName, eng.JoinPointer("", tok.String), tok.Start, tok.End,
					map[string]string{ParamType: tok.String})
			}
			v.stopped = true
			return
		}
		doc.typeName = tok.String
		doc.fields = fields
	case TokenBeginArray:
		v.push(frame{kind: arrayFrame, path: v.childPath(doc), elementType: doc.typeName})
	case TokenBeginObject:
		v.enterRecord(doc.typeName, doc.fields, v.childPath(doc), tok)
	case TokenNull:
	case TokenEndObject:
		v.pop()
	default:
		v.unexpected(v.childPath(doc), tok)
	}
}

// inRecord handles keys and values of an object validated against a schema.
func (v *validator) inRecord(rec *frame, tok Token) {
	switch tok.Kind {
	case TokenKey:
		rec.seenAttributeCount++
		rec.lastFieldName = tok.String
		if !rec.fields.Has(tok.String) {
			rec.failed = true
			v.report(CodeUnknownAttributeName, eng.JoinPointer(rec.path, tok.String), tok.Start, tok.End,
				map[string]string{ParamType: rec.typeName, ParamField: tok.String})
		}
	case TokenString, TokenNumber, TokenBool:
		if declared, ok := rec.fields.Declared(rec.lastFieldName); ok {
			if _, _, isRecord := v.schema.Resolve(declared); isRecord {
				rec.failed = true
				v.unexpected(eng.JoinPointer(rec.path, rec.lastFieldName), tok)
				return
			}
		}
		if !rec.failed && rec.fields.Has(rec.lastFieldName) {
			rec.record[rec.lastFieldName] = tok.Value()
		}
	case TokenNull:
		if !rec.failed && rec.fields.Has(rec.lastFieldName) {
			rec.record[rec.lastFieldName] = tok.Value()
		}
	case TokenBeginObject:
		v.enterNestedRecord(rec, tok)
	case TokenBeginArray:
		v.enterFieldArray(rec)
	case TokenEndObject:
		v.closeRecord(tok)
	default:
		v.unexpected(rec.path, tok)
	}
}

// inArray handles the elements of a transparent array.
func (v *validator) inArray(arr *frame, tok Token) {
	switch tok.Kind {
	case TokenBeginObject:
		v.enterArrayElement(arr, tok)
	case TokenBeginArray:
		v.push(frame{kind: arrayFrame, path: v.childPath(arr), elementType: arr.elementType, opaque: arr.opaque})
	case TokenEndArray:
		v.closeArray()
	case TokenNull:
		v.childPath(arr)
		arr.items = append(arr.items, nil)
	case TokenString, TokenNumber, TokenBool:
		path := v.childPath(arr)
		if !arr.opaque {
			if _, _, ok := v.schema.Resolve(arr.elementType); ok {
				arr.failed = true
				v.unexpected(path, tok)
				return
			}
		}
		arr.items = append(arr.items, tok.Value())
	default:
		v.unexpected(arr.path, tok)
	}
}

// inOpaque captures an unvalidated object so it can still be re-exported.
func (v *validator) inOpaque(obj *frame, tok Token) {
	switch tok.Kind {
	case TokenKey:
		obj.lastFieldName = tok.String
	case TokenString, TokenNumber, TokenBool, TokenNull:
		obj.record[obj.lastFieldName] = tok.Value()
	case TokenBeginObject:
		v.push(frame{kind: opaqueFrame, path: v.childPath(obj), record: Record{}})
	case TokenBeginArray:
		v.push(frame{kind: arrayFrame, path: v.childPath(obj), opaque: true})
	case TokenEndObject:
		f := v.pop()
		v.attach(f.record, f.failed)
	default:
		v.unexpected(obj.path, tok)
	}
}

// enterRecord pushes a frame for an object validated against fields.
func (v *validator) enterRecord(typeName string, fields Fields, path string, tok Token) {
	v.push(frame{
		kind:                   recordFrame,
		path:                   path,
		typeName:               typeName,
		fields:                 fields,
		expectedAttributeCount: fields.Len(),
		startPosition:          tok.Start,
		record:                 Record{},
	})
}

// enterNestedRecord descends into an object held by a record field. The
// field's declared type selects the nested schema.
func (v *validator) enterNestedRecord(parent *frame, tok Token) {
	path := v.childPath(parent)
	declared, known := parent.fields.Declared(parent.lastFieldName)
	if !known {
		v.push(frame{kind: opaqueFrame, path: path, record: Record{}})
		return
	}
	v.enterTyped(parent, declared, path, tok)
}

// enterArrayElement starts a sibling record inside an array; every element
// reuses the array's element type.
func (v *validator) enterArrayElement(arr *frame, tok Token) {
	path := v.childPath(arr)
	if arr.opaque {
		v.push(frame{kind: opaqueFrame, path: path, record: Record{}})
		return
	}
	v.enterTyped(arr, arr.elementType, path, tok)
}

func (v *validator) enterTyped(parent *frame, declared, path string, tok Token) {
	name, fields, ok := v.schema.Resolve(declared)
	switch {
	case ok:
		v.enterRecord(name, fields, path, tok)
	case isQualifiedTypeName(name):
		parent.failed = true
		v.report(CodeUnresolvableTypeName, path, tok.Start, tok.End, map[string]string{ParamType: name})
		v.push(frame{kind: opaqueFrame, path: path, record: Record{}, failed: true})
	default:
		v.push(frame{kind: opaqueFrame, path: path, record: Record{}})
	}
}

// enterFieldArray opens an array held by a record field.
func (v *validator) enterFieldArray(rec *frame) {
	path := v.childPath(rec)
	declared, known := rec.fields.Declared(rec.lastFieldName)
	v.push(frame{kind: arrayFrame, path: path, elementType: StripTypeMarkers(declared), opaque: !known})
}

// closeRecord checks the attribute count of the record being closed and
// hands it to its container.
func (v *validator) closeRecord(tok Token) {
	f := v.pop()
	if f.seenAttributeCount != f.expectedAttributeCount {
		f.failed = true
		v.report(CodeInvalidAttributeCount, f.path, f.startPosition, tok.End, map[string]string{
			ParamType:     f.typeName,
			ParamExpected: strconv.Itoa(f.expectedAttributeCount),
			ParamFound:    strconv.Itoa(f.seenAttributeCount),
		})
	}
	if !f.failed {
		v.records.add(f.typeName, f.record)
	}
	v.attach(f.record, f.failed)
}

// attach delivers a closed value to the container now on top of the stack.
func (v *validator) attach(val any, failed bool) {
	if len(v.stack) == 0 {
		return
	}
	parent := v.top()
	switch parent.kind {
	case arrayFrame:
		v.closeArrayElement(parent, val, failed)
	case recordFrame, opaqueFrame:
		v.closeNestedRecord(parent, val, failed)
	}
}

// closeArrayElement appends a finished element; a sibling may follow.
func (v *validator) closeArrayElement(arr *frame, val any, failed bool) {
	arr.items = append(arr.items, val)
	if failed {
		arr.failed = true
	}
}

// closeNestedRecord stores a finished value under the parent's current
// field and resumes the parent.
func (v *validator) closeNestedRecord(parent *frame, val any, failed bool) {
	if failed {
		parent.failed = true
	}
	if parent.kind == opaqueFrame || parent.fields.Has(parent.lastFieldName) {
		parent.record[parent.lastFieldName] = val
	}
}

func (v *validator) closeArray() {
	f := v.pop()
	items := f.items
	if items == nil {
		items = []any{}
	}
	v.attach(items, f.failed)
}

// childPath returns the JSON Pointer of the next value inside f.
func (v *validator) childPath(f *frame) string {
	if f.kind == arrayFrame {
		p := eng.JoinPointer(f.path, strconv.Itoa(f.nextIndex))
		f.nextIndex++
		return p
	}
	return eng.JoinPointer(f.path, f.lastFieldName)
}

func (v *validator) unexpected(path string, tok Token) {
	v.report(CodeUnexpectedJSONToken, path, tok.Start, tok.End, map[string]string{ParamToken: tok.Kind.String()})
}

func (v *validator) report(code, path string, start, end Position, params map[string]string) {
	if path == "" {
		path = "/"
	}
	v.sink.Add(Diagnostic{Code: code, File: v.opt.File, Path: path, Start: start, End: end, Params: params})
}

// isQualifiedTypeName reports whether name looks like org/module:version:Name
// rather than a builtin type such as "string" or "json".
func isQualifiedTypeName(name string) bool { return strings.Contains(name, ":") }
