package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/reoring/samplecheck"
)

type reporter struct {
	w     io.Writer
	bad   *color.Color
	good  *color.Color
	code  *color.Color
	where *color.Color
}

func newReporter(w io.Writer, colored bool) *reporter {
	r := &reporter{
		w:     w,
		bad:   color.New(color.FgRed, color.Bold),
		good:  color.New(color.FgGreen),
		code:  color.New(color.FgYellow),
		where: color.New(color.FgCyan),
	}
	if !colored {
		for _, c := range []*color.Color{r.bad, r.good, r.code, r.where} {
			c.DisableColor()
		}
	}
	return r
}

// report prints a numbered list of diagnostics, or a one-line summary when
// there are none.
func (r *reporter) report(res *samplecheck.Result) {
	if len(res.Diagnostics) == 0 {
		r.good.Fprintf(r.w, "%d sample files are valid (%d records).\n", res.Files, res.Records.Len())
		return
	}
	r.bad.Fprintf(r.w, "Found %d errors in %d sample files\n\n", len(res.Diagnostics), res.Files)
	for i, d := range res.Diagnostics {
		fmt.Fprintf(r.w, "%d) %s %s\n", i+1, r.code.Sprint(d.ID()), d.Message())
		fmt.Fprintf(r.w, "\tat %s\n", r.where.Sprint(location(d)))
	}
	fmt.Fprintln(r.w)
}

func location(d samplecheck.Diagnostic) string {
	s := d.File
	if d.Start.IsValid() {
		s += fmt.Sprintf(":%d:%d", d.Start.Line, d.Start.Column)
	}
	if d.Path != "" {
		s += " (" + d.Path + ")"
	}
	return s
}
