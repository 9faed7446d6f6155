// Package samplecheck validates hand-written JSON sample files against record
// schemas extracted from source code.
//
// - A TypeSchema maps qualified type names (org/module:version:Name) to their
//   fields and declared types ("pkg:User", "pkg:Label[]", "string?").
// - Sample files look like {"<typeName>": [{...}, ...]} and are read as a token
//   stream; nested objects are validated against the schema named by the
//   declared type of the field that holds them.
// - Findings are Diagnostics with a code, a JSON Pointer and a line/column
//   span. A malformed file yields one invalid_json_content diagnostic and does
//   not stop the others.
//
// Typical usage:
//
//	schema, err := samplecheck.LoadSchemaFile("schema.json", nil)
//	res, err := samplecheck.RunProject(ctx, ".", schema, samplecheck.Options{})
//	for _, d := range res.Diagnostics {
//		fmt.Println(d)
//	}
//	_, err = samplecheck.WriteMerged(".", "", res.Records)
package samplecheck
