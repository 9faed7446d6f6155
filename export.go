package samplecheck

import (
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MarshalMerged renders the records of one type as {"<typeName>": [...]}.
// Object keys are sorted, so equal inputs give byte-identical output.
func MarshalMerged(typeName string, recs []Record) ([]byte, error) {
	if recs == nil {
		recs = []Record{}
	}
	b, err := gojson.MarshalIndent(map[string][]Record{typeName: recs}, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "marshal samples of %s", typeName)
	}
	return append(b, '\n'), nil
}

// WriteMerged writes one merged sample file per type and returns the written
// paths in type order. See MergedPath for the file locations.
func WriteMerged(root, outDir string, recs Records) ([]string, error) {
	var written []string
	for _, name := range recs.TypeNames() {
		b, err := MarshalMerged(name, recs[name])
		if err != nil {
			return written, err
		}
		path := MergedPath(root, outDir, name)
		if err := writeFile(path, b); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteSchemas writes {"<typeName>": {"<field>": "<declaredType>"}} for every
// type of schema and returns the written paths in type order.
func WriteSchemas(root, outDir string, schema *TypeSchema) ([]string, error) {
	var written []string
	for _, name := range schema.TypeNames() {
		fields, _ := schema.Lookup(name)
		b, err := gojson.MarshalIndent(map[string]Fields{name: fields}, "", "  ")
		if err != nil {
			return written, errors.Wrapf(err, "marshal schema of %s", name)
		}
		path := SchemaPath(root, outDir, name)
		if err := writeFile(path, append(b, '\n')); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
