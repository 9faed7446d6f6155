package samplecheck_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/samplecheck"
	gojsonsrc "github.com/reoring/samplecheck/source/gojson"
	jsonsrc "github.com/reoring/samplecheck/source/json"
)

var (
	issueSchema = map[string]map[string]string{
		"pkg:Issue": {"id": "int", "title": "string"},
	}
	nestedSchema = map[string]map[string]string{
		"pkg:Issue": {"id": "int", "assignee": "pkg:User"},
		"pkg:User":  {"name": "string"},
	}
	labelSchema = map[string]map[string]string{
		"pkg:Issue": {"id": "int", "labels": "pkg:Label[]"},
		"pkg:Label": {"name": "string", "color": "string?"},
	}
)

type num = samplecheck.Number

func validate(t *testing.T, schema map[string]map[string]string, doc string) (samplecheck.Records, samplecheck.Diagnostics) {
	t.Helper()
	recs, diags, err := validateWith(jsonsrc.Driver(), schema, doc, samplecheck.ValidateOpt{File: "test_data.json"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return recs, diags
}

func validateWith(d samplecheck.JSONDriver, schema map[string]map[string]string, doc string, opt samplecheck.ValidateOpt) (samplecheck.Records, samplecheck.Diagnostics, error) {
	var sink samplecheck.Collector
	recs, err := samplecheck.Validate(context.Background(), samplecheck.NewTypeSchema(schema), d.NewBytes([]byte(doc)), &sink, opt)
	return recs, sink.Drain(), err
}

func codes(ds samplecheck.Diagnostics) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestValidate_Scenarios(t *testing.T) {
	drivers := []samplecheck.JSONDriver{jsonsrc.Driver(), gojsonsrc.Driver()}
	cases := []struct {
		name      string
		schema    map[string]map[string]string
		doc       string
		wantCodes []string
		wantRecs  samplecheck.Records
	}{
		{
			name:     "valid record",
			schema:   issueSchema,
			doc:      `{"pkg:Issue":[{"id":1,"title":"x"}]}`,
			wantRecs: samplecheck.Records{"pkg:Issue": {{"id": num("1"), "title": "x"}}},
		},
		{
			name:   "extra attribute",
			schema: issueSchema,
			doc:    `{"pkg:Issue":[{"id":1,"title":"x","extra":"y"}]}`,
			wantCodes: []string{
				samplecheck.CodeUnknownAttributeName,
				samplecheck.CodeInvalidAttributeCount,
			},
			wantRecs: samplecheck.Records{},
		},
		{
			name:   "nested record",
			schema: nestedSchema,
			doc:    `{"pkg:Issue":[{"id":1,"assignee":{"name":"a"}}]}`,
			wantRecs: samplecheck.Records{
				"pkg:Issue": {{"id": num("1"), "assignee": samplecheck.Record{"name": "a"}}},
				"pkg:User":  {{"name": "a"}},
			},
		},
		{
			name:      "unknown attribute name",
			schema:    issueSchema,
			doc:       `{"pkg:Issue":[{"idx":1,"title":"x"}]}`,
			wantCodes: []string{samplecheck.CodeUnknownAttributeName},
			wantRecs:  samplecheck.Records{},
		},
	}
	for _, d := range drivers {
		for _, tc := range cases {
			t.Run(d.Name()+"/"+tc.name, func(t *testing.T) {
				recs, diags, err := validateWith(d, tc.schema, tc.doc, samplecheck.ValidateOpt{})
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				if diff := cmp.Diff(tc.wantCodes, codes(diags)); diff != "" {
					t.Fatalf("diagnostic codes mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(tc.wantRecs, recs); diff != "" {
					t.Fatalf("records mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestValidate_AttributeCountParams(t *testing.T) {
	_, diags := validate(t, issueSchema, `{"pkg:Issue":[{"id":1,"title":"x","extra":"y"}]}`)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	got := diags[1]
	if got.Params[samplecheck.ParamExpected] != "2" || got.Params[samplecheck.ParamFound] != "3" {
		t.Fatalf("unexpected params: %v", got.Params)
	}
	if got.Message() != "invalid attribute count: expected 2, found 3" {
		t.Fatalf("unexpected message: %q", got.Message())
	}
	if got.Path != "/pkg:Issue/0" {
		t.Fatalf("unexpected path: %s", got.Path)
	}
}

func TestValidate_UnknownAttributeSpan(t *testing.T) {
	doc := "{\n" +
		"    \"pkg:Issue\": [\n" +
		"        {\n" +
		"            \"idx\": 1,\n" +
		"            \"title\": \"x\"\n" +
		"        }\n" +
		"    ]\n" +
		"}\n"
	_, diags := validate(t, issueSchema, doc)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	want := samplecheck.Diagnostic{
		Code:   samplecheck.CodeUnknownAttributeName,
		File:   "test_data.json",
		Path:   "/pkg:Issue/0/idx",
		Start:  samplecheck.Position{Line: 4, Column: 13, Offset: int64(strings.Index(doc, `"idx"`))},
		End:    samplecheck.Position{Line: 4, Column: 18, Offset: int64(strings.Index(doc, `"idx"`) + 5)},
		Params: map[string]string{samplecheck.ParamType: "pkg:Issue", samplecheck.ParamField: "idx"},
	}
	if diff := cmp.Diff(want, diags[0]); diff != "" {
		t.Fatalf("diagnostic mismatch (-want +got):\n%s", diff)
	}
	if diags[0].Message() != "type pkg:Issue does not have an attribute named idx" {
		t.Fatalf("unexpected message: %q", diags[0].Message())
	}
}

func TestValidate_AttributeCountSpan(t *testing.T) {
	doc := "{\n  \"pkg:Issue\": [\n    {\"id\": 1}\n  ]\n}"
	_, diags := validate(t, issueSchema, doc)
	if len(diags) != 1 || diags[0].Code != samplecheck.CodeInvalidAttributeCount {
		t.Fatalf("expected one attribute count diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Start.Line != 3 || d.Start.Column != 5 || d.End.Line != 3 || d.End.Column != 14 {
		t.Fatalf("unexpected span %s-%s", d.Start, d.End)
	}
}

func TestValidate_TopLevelArrayLengths(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want int
	}{
		{"zero", `{"pkg:Issue":[]}`, 0},
		{"one", `{"pkg:Issue":[{"id":1,"title":"a"}]}`, 1},
		{"many", `{"pkg:Issue":[{"id":1,"title":"a"},{"id":2,"title":"b"},{"id":3,"title":"c"}]}`, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, diags := validate(t, issueSchema, tc.doc)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if got := len(recs["pkg:Issue"]); got != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, got)
			}
			for i, r := range recs["pkg:Issue"] {
				if r["id"] != num(string(rune('1'+i))) {
					t.Fatalf("record %d out of order: %v", i, r)
				}
			}
		})
	}
}

func TestValidate_NestedArrayLengths(t *testing.T) {
	cases := []struct {
		name   string
		labels string
		want   int
	}{
		{"zero", `[]`, 0},
		{"one", `[{"name":"bug","color":"red"}]`, 1},
		{"many", `[{"name":"bug","color":"red"},{"name":"ui","color":"blue"},{"name":"p1","color":null}]`, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `{"pkg:Issue":[{"id":7,"labels":` + tc.labels + `}]}`
			recs, diags := validate(t, labelSchema, doc)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if got := len(recs["pkg:Label"]); got != tc.want {
				t.Fatalf("expected %d label records, got %d", tc.want, got)
			}
			issues := recs["pkg:Issue"]
			if len(issues) != 1 {
				t.Fatalf("expected 1 issue record, got %d", len(issues))
			}
			labels, ok := issues[0]["labels"].([]any)
			if !ok || len(labels) != tc.want {
				t.Fatalf("expected %d embedded labels, got %#v", tc.want, issues[0]["labels"])
			}
		})
	}
}

func TestValidate_BadArrayElementFailsOnlyItsOwner(t *testing.T) {
	doc := `{"pkg:Issue":[` +
		`{"id":1,"labels":[{"name":"a","color":"red"},{"name":"b"},{"name":"c","color":"blue"}]},` +
		`{"id":2,"labels":[]}` +
		`]}`
	recs, diags := validate(t, labelSchema, doc)
	if diff := cmp.Diff([]string{samplecheck.CodeInvalidAttributeCount}, codes(diags)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if diags[0].Path != "/pkg:Issue/0/labels/1" {
		t.Fatalf("unexpected path %s", diags[0].Path)
	}
	if diags[0].Params[samplecheck.ParamType] != "pkg:Label" {
		t.Fatalf("count diagnostic should name the nested type, got %v", diags[0].Params)
	}
	if got := len(recs["pkg:Label"]); got != 2 {
		t.Fatalf("expected the 2 valid labels, got %d", got)
	}
	issues := recs["pkg:Issue"]
	if len(issues) != 1 || issues[0]["id"] != num("2") {
		t.Fatalf("only the second issue should validate, got %v", issues)
	}
}

func TestValidate_NestedThenParentField(t *testing.T) {
	doc := `{"pkg:Issue":[{"assignee":{"name":"a"},"id":1},{"id":2,"assignee":{"name":"b"}}]}`
	recs, diags := validate(t, nestedSchema, doc)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []samplecheck.Record{
		{"id": num("1"), "assignee": samplecheck.Record{"name": "a"}},
		{"id": num("2"), "assignee": samplecheck.Record{"name": "b"}},
	}
	if diff := cmp.Diff(want, recs["pkg:Issue"]); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_NestedErrorsStayInNestedFrame(t *testing.T) {
	doc := `{"pkg:Issue":[{"id":1,"assignee":{"name":"a","x":1}}]}`
	_, diags := validate(t, nestedSchema, doc)
	if diff := cmp.Diff([]string{samplecheck.CodeUnknownAttributeName, samplecheck.CodeInvalidAttributeCount}, codes(diags)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if diags[0].Params[samplecheck.ParamType] != "pkg:User" || diags[1].Params[samplecheck.ParamType] != "pkg:User" {
		t.Fatalf("diagnostics should refer to pkg:User: %v", diags)
	}
	if diags[1].Params[samplecheck.ParamExpected] != "1" || diags[1].Params[samplecheck.ParamFound] != "2" {
		t.Fatalf("unexpected counts: %v", diags[1].Params)
	}
}

func TestValidate_NullNestedRecordAccepted(t *testing.T) {
	recs, diags := validate(t, nestedSchema, `{"pkg:Issue":[{"id":1,"assignee":null}]}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := samplecheck.Records{"pkg:Issue": {{"id": num("1"), "assignee": nil}}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_SingleRecordDocument(t *testing.T) {
	recs, diags := validate(t, issueSchema, `{"pkg:Issue":{"id":1,"title":"x"}}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(recs["pkg:Issue"]) != 1 {
		t.Fatalf("expected one record, got %v", recs)
	}
}

func TestValidate_SeveralTypesInOneDocument(t *testing.T) {
	doc := `{"pkg:Issue":[{"id":1,"assignee":null}],"pkg:User":[{"name":"a"},{"name":"b"}]}`
	recs, diags := validate(t, nestedSchema, doc)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(recs["pkg:Issue"]) != 1 || len(recs["pkg:User"]) != 2 {
		t.Fatalf("unexpected records: %v", recs)
	}
}

func TestValidate_UnknownTopLevelType(t *testing.T) {
	doc := `{"pkg:Nope":[{"a":1}],"pkg:Issue":[{"zzz":1}]}`
	recs, diags := validate(t, issueSchema, doc)
	if diff := cmp.Diff([]string{samplecheck.CodeUnresolvableTypeName}, codes(diags)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if diags[0].Params[samplecheck.ParamType] != "pkg:Nope" {
		t.Fatalf("unexpected params: %v", diags[0].Params)
	}
	if recs.Len() != 0 {
		t.Fatalf("expected no records, got %v", recs)
	}

	_, diags, err := validateWith(jsonsrc.Driver(), issueSchema, doc, samplecheck.ValidateOpt{SkipUnknownTypes: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unknown types should be skipped silently, got %v", diags)
	}
}

func TestValidate_UnresolvableNestedType(t *testing.T) {
	schema := map[string]map[string]string{
		"pkg:Issue": {"id": "int", "owner": "pkg:Missing?"},
	}
	recs, diags := validate(t, schema, `{"pkg:Issue":[{"id":1,"owner":{"name":"x"}}]}`)
	if diff := cmp.Diff([]string{samplecheck.CodeUnresolvableTypeName}, codes(diags)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if diags[0].Params[samplecheck.ParamType] != "pkg:Missing" || diags[0].Path != "/pkg:Issue/0/owner" {
		t.Fatalf("unexpected diagnostic: %+v", diags[0])
	}
	if recs.Len() != 0 {
		t.Fatalf("issue with an unresolvable branch must not validate, got %v", recs)
	}
}

func TestValidate_OpenTypedObjectIsCaptured(t *testing.T) {
	schema := map[string]map[string]string{
		"pkg:Issue": {"id": "int", "meta": "json", "tags": "string[]"},
	}
	recs, diags := validate(t, schema, `{"pkg:Issue":[{"id":1,"meta":{"a":[1,{"b":true}]},"tags":["x","y"]}]}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := samplecheck.Records{"pkg:Issue": {{
		"id":   num("1"),
		"meta": samplecheck.Record{"a": []any{num("1"), samplecheck.Record{"b": true}}},
		"tags": []any{"x", "y"},
	}}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnexpectedTokens(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		token string
	}{
		{"top level array", `[{"pkg:Issue":[]}]`, "["},
		{"top level scalar", `"pkg:Issue"`, "string"},
		{"scalar type value", `{"pkg:Issue":5}`, "number"},
		{"scalar in record array", `{"pkg:Issue":[{"id":1,"title":"x"},true]}`, "boolean"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := validate(t, issueSchema, tc.doc)
			if len(diags) != 1 || diags[0].Code != samplecheck.CodeUnexpectedJSONToken {
				t.Fatalf("expected one unexpected token diagnostic, got %v", diags)
			}
			if got := diags[0].Params[samplecheck.ParamToken]; got != tc.token {
				t.Fatalf("expected token %q, got %q", tc.token, got)
			}
		})
	}
}

func TestValidate_ScalarForRecordField(t *testing.T) {
	cases := []struct {
		name   string
		schema map[string]map[string]string
		doc    string
		path   string
		token  string
	}{
		{"record field", nestedSchema, `{"pkg:Issue":[{"id":1,"assignee":"bob"}]}`, "/pkg:Issue/0/assignee", "string"},
		{"record array field", labelSchema, `{"pkg:Issue":[{"id":1,"labels":"x"}]}`, "/pkg:Issue/0/labels", "string"},
		{"number for record", nestedSchema, `{"pkg:Issue":[{"assignee":3,"id":1}]}`, "/pkg:Issue/0/assignee", "number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, diags := validate(t, tc.schema, tc.doc)
			if diff := cmp.Diff([]string{samplecheck.CodeUnexpectedJSONToken}, codes(diags)); diff != "" {
				t.Fatalf("diagnostic codes mismatch (-want +got):\n%s", diff)
			}
			if diags[0].Path != tc.path || diags[0].Params[samplecheck.ParamToken] != tc.token {
				t.Fatalf("got %s at %s", diags[0].Params[samplecheck.ParamToken], diags[0].Path)
			}
			if len(recs["pkg:Issue"]) != 0 {
				t.Fatalf("failed record must not be kept: %v", recs)
			}
		})
	}

	// null stays accepted for record fields
	_, diags := validate(t, labelSchema, `{"pkg:Issue":[{"id":1,"labels":null}]}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestValidate_MalformedKeepsEarlierFindings(t *testing.T) {
	doc := `{"pkg:Issue":[{"idx":1,"title":"x"},{"id":2,,}]}`
	var sink samplecheck.Collector
	_, err := samplecheck.Validate(context.Background(), samplecheck.NewTypeSchema(issueSchema),
		jsonsrc.NewBytes([]byte(doc)), &sink, samplecheck.ValidateOpt{})
	if err == nil {
		t.Fatalf("expected a tokenizer error")
	}
	if sink.Len() != 1 || sink.Diagnostics()[0].Code != samplecheck.CodeUnknownAttributeName {
		t.Fatalf("findings before the failure should remain: %v", sink.Diagnostics())
	}
}

func TestValidate_FreshStatePerCall(t *testing.T) {
	doc := `{"pkg:Issue":[{"id":1,"assignee":{"name":"a"}}]}`
	first, d1 := validate(t, nestedSchema, doc)
	second, d2 := validate(t, nestedSchema, doc)
	if len(d1) != 0 || len(d2) != 0 {
		t.Fatalf("unexpected diagnostics: %v %v", d1, d2)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
}
