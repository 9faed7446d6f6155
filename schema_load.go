package samplecheck

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// SchemaFormat selects the encoding of a schema feed.
type SchemaFormat int

const (
	SchemaJSON SchemaFormat = iota
	SchemaYAML
)

// SchemaFormatFor guesses the feed format from a file extension.
func SchemaFormatFor(path string) SchemaFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SchemaYAML
	}
	return SchemaJSON
}

// LoadSchemaFile reads a schema feed from path.
func LoadSchemaFile(path string, driver JSONDriver) (*TypeSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open schema")
	}
	defer f.Close()
	s, err := LoadSchema(f, SchemaFormatFor(path), driver)
	if err != nil {
		return nil, errors.Wrapf(err, "load schema %s", path)
	}
	return s, nil
}

// LoadSchema reads a schema feed of the form
// {"<qualifiedTypeName>": {"<field>": "<declaredType>", ...}, ...}.
// A nil driver selects the default JSON driver.
func LoadSchema(r io.Reader, format SchemaFormat, driver JSONDriver) (*TypeSchema, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read schema")
	}
	var m map[string]map[string]string
	switch format {
	case SchemaYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&m); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "decode yaml schema")
		}
	default:
		if driver == nil {
			driver = DefaultJSONDriver()
		}
		m, err = decodeJSONSchema(driver.NewBytes(b))
		if err != nil {
			return nil, err
		}
	}
	return NewTypeSchema(m), nil
}

func decodeJSONSchema(src TokenSource) (map[string]map[string]string, error) {
	v, err := eng.DecodeAny(src)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode json schema")
	}
	if _, err := src.NextToken(); err != io.EOF {
		return nil, errors.New("decode json schema: unexpected data after top-level value")
	}
	top, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("schema must be a JSON object of types")
	}
	out := make(map[string]map[string]string, len(top))
	for name, raw := range top {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("type %s: fields must be an object", name)
		}
		f := make(map[string]string, len(fields))
		for field, declared := range fields {
			s, ok := declared.(string)
			if !ok {
				return nil, errors.Errorf("type %s: field %s: declared type must be a string", name, field)
			}
			f[field] = s
		}
		out[name] = f
	}
	return out, nil
}
