package samplecheck

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"
	"golang.org/x/sync/errgroup"

	eng "github.com/reoring/samplecheck/internal/engine"
)

// Limits bounds tokenizer input; crossing a bound makes the document
// malformed.
type Limits = eng.Limits

// DuplicatePolicy controls how repeated object keys are treated.
type DuplicatePolicy = eng.DuplicatePolicy

const (
	DuplicateIgnore = eng.DupIgnore
	DuplicateError  = eng.DupError
)

// ParseDuplicatePolicy maps "ignore" or "error" to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) { return eng.ParseDuplicatePolicy(s) }

// Options configures a Runner.
type Options struct {
	// Driver tokenizes sample files. Nil selects DefaultJSONDriver.
	Driver JSONDriver
	Limits Limits
	// AllowComments accepts comments and trailing commas in sample files.
	AllowComments bool
	// SkipUnknownTypes ignores documents whose type is not in the schema.
	SkipUnknownTypes bool
	// Parallelism bounds how many modules RunProject validates at once.
	// Zero or less means no bound.
	Parallelism int
}

// Result is the outcome of validating a set of sample files.
type Result struct {
	Files       int
	Records     Records
	Diagnostics Diagnostics
}

func (r *Result) merge(other *Result) {
	if other == nil {
		return
	}
	r.Files += other.Files
	r.Records.Merge(other.Records)
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Runner validates sample files one after another against a schema. A
// Runner owns its collector and must not be shared between goroutines.
type Runner struct {
	schema    *TypeSchema
	opt       Options
	collector Collector
}

// NewRunner returns a Runner for schema.
func NewRunner(schema *TypeSchema, opt Options) *Runner {
	if opt.Driver == nil {
		opt.Driver = DefaultJSONDriver()
	}
	return &Runner{schema: schema, opt: opt}
}

// Run validates files in order. A file that cannot be read or tokenized
// yields one CodeInvalidJSONContent diagnostic and the run moves on to the
// next file. Records are merged per type in file order. Only context
// cancellation ends a run early.
func (r *Runner) Run(ctx context.Context, files []string) (*Result, error) {
	log := zerolog.Ctx(ctx)
	res := &Result{Records: Records{}}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := r.collector.Len()
		recs := r.runFile(ctx, path)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Files++
		res.Records.Merge(recs)
		log.Debug().
			Str("file", path).
			Int("records", recs.Len()).
			Int("diagnostics", r.collector.Len()-before).
			Msg("validated sample file")
	}
	res.Diagnostics = r.collector.Drain()
	log.Info().
		Int("files", res.Files).
		Int("records", res.Records.Len()).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("sample validation finished")
	return res, nil
}

func (r *Runner) runFile(ctx context.Context, path string) Records {
	b, err := os.ReadFile(path)
	if err != nil {
		r.invalidContent(path, "/", Position{}, err.Error())
		return nil
	}
	return r.ValidateBytes(ctx, path, b)
}

// ValidateBytes validates one buffered document into the runner's collector
// and returns its records, or nil when the document is malformed.
func (r *Runner) ValidateBytes(ctx context.Context, file string, b []byte) Records {
	if r.opt.AllowComments {
		n := eng.BOMLen(b)
		std, err := hujson.Standardize(append([]byte(nil), b[n:]...))
		if err != nil {
			r.invalidContent(file, "/", Position{}, err.Error())
			return nil
		}
		b = append(b[:n:n], std...)
	}
	src := eng.Enforce(r.opt.Driver.NewBytes(b), r.opt.Limits)
	recs, err := Validate(ctx, r.schema, src, &r.collector, ValidateOpt{
		File:             file,
		SkipUnknownTypes: r.opt.SkipUnknownTypes,
	})
	if err == nil {
		return recs
	}
	if ctx.Err() != nil {
		return nil
	}
	path, pos, detail := describeFailure(err, src)
	r.invalidContent(file, path, pos, detail)
	return nil
}

// Drain returns and clears the diagnostics collected so far.
func (r *Runner) Drain() Diagnostics { return r.collector.Drain() }

func (r *Runner) invalidContent(file, path string, pos Position, detail string) {
	r.collector.Add(Diagnostic{
		Code:   CodeInvalidJSONContent,
		File:   file,
		Path:   path,
		Start:  pos,
		End:    pos,
		Params: map[string]string{ParamDetail: detail},
	})
}

// describeFailure anchors a tokenizer failure at the most precise position
// known: the error's own position, else the source's last location.
func describeFailure(err error, src TokenSource) (path string, pos Position, detail string) {
	path, pos, detail = "/", src.Location(), err.Error()
	var se *eng.SyntaxError
	var le *eng.LimitError
	switch {
	case errors.As(err, &se):
		detail = se.Msg
		if se.Pos.IsValid() {
			pos = se.Pos
		}
	case errors.As(err, &le):
		path, detail = le.Path, le.Msg
		if le.Pos.IsValid() {
			pos = le.Pos
		}
	}
	return path, pos, detail
}

// RunProject validates the sample files of every module named by schema
// under the project root. Modules run concurrently, each with its own Runner;
// results are merged in module order so the outcome does not depend on
// scheduling.
func RunProject(ctx context.Context, root string, schema *TypeSchema, opt Options) (*Result, error) {
	mods := schema.Modules()
	results := make([]*Result, len(mods))
	g, gctx := errgroup.WithContext(ctx)
	if opt.Parallelism > 0 {
		g.SetLimit(opt.Parallelism)
	}
	for i, mod := range mods {
		i, mod := i, mod
		g.Go(func() error {
			files, err := DiscoverSampleFiles(root, mod)
			if err != nil {
				return err
			}
			logger := zerolog.Ctx(gctx).With().Str("module", moduleLabel(mod)).Logger()
			res, err := NewRunner(schema, opt).Run(logger.WithContext(gctx), files)
			if err != nil {
				return errors.Wrapf(err, "module %s", moduleLabel(mod))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	merged := &Result{Records: Records{}}
	for _, res := range results {
		merged.merge(res)
	}
	return merged, nil
}

func moduleLabel(mod string) string {
	if mod == "" {
		return "(default)"
	}
	return mod
}
