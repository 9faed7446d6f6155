package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kingpin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reoring/samplecheck"
	"github.com/reoring/samplecheck/i18n"
)

const version = "0.1.0"

// errFindings signals a run that completed but reported diagnostics.
var errFindings = errors.New("sample files have errors")

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		if err == errFindings {
			os.Exit(1)
		}
		fatalf("error: %v", err)
	}
}

type globalFlags struct {
	config   *string
	logLevel *string
	noColor  *bool
}

type validateFlags struct {
	project          *string
	schema           *string
	modules          *[]string
	driver           *string
	lang             *string
	write            *bool
	out              *string
	allowComments    *bool
	skipUnknownTypes *bool
}

type schemasFlags struct {
	project *string
	schema  *string
	out     *string
}

func realMain(args []string) error {
	app := kingpin.New("samplecheck", "samplecheck validates *_data.json sample files against record schemas.").Version(version)
	g := globalFlags{
		config:   app.Flag("config", "YAML configuration file.").String(),
		logLevel: app.Flag("log-level", "Log level (debug, info, warn, error).").String(),
		noColor:  app.Flag("no-color", "Disable colored output.").Bool(),
	}

	validateCmd := app.Command("validate", "Validate sample files of a project.").Default()
	v := validateFlags{
		project:          validateCmd.Arg("project", "Project root directory.").String(),
		schema:           validateCmd.Flag("schema", "Schema feed (JSON or YAML).").String(),
		modules:          validateCmd.Flag("module", "Validate only this module; 'default' selects the root resources. Repeatable.").Strings(),
		driver:           validateCmd.Flag("driver", "JSON driver: "+strings.Join(samplecheck.DriverNames(), ", ")+".").String(),
		lang:             validateCmd.Flag("lang", "Message language (en, ja).").String(),
		write:            validateCmd.Flag("write", "Write merged <Type>_data.json files.").Bool(),
		out:              validateCmd.Flag("out", "Directory for merged files instead of module resources.").String(),
		allowComments:    validateCmd.Flag("allow-comments", "Accept comments and trailing commas in sample files.").Bool(),
		skipUnknownTypes: validateCmd.Flag("skip-unknown-types", "Skip samples whose type is not in the schema.").Bool(),
	}

	schemasCmd := app.Command("schemas", "Export <Type>_schema.json files for every schema type.")
	s := schemasFlags{
		project: schemasCmd.Arg("project", "Project root directory.").String(),
		schema:  schemasCmd.Flag("schema", "Schema feed (JSON or YAML).").String(),
		out:     schemasCmd.Flag("out", "Directory for schema files instead of module resources.").String(),
	}

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*g.config)
	if err != nil {
		return err
	}
	if *g.logLevel != "" {
		cfg.Log.Level = *g.logLevel
	}
	logger, err := newLogger(cfg.Log.Level, *g.noColor)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	switch cmd {
	case validateCmd.FullCommand():
		v.apply(&cfg)
		return runValidate(ctx, cfg, *v.modules, os.Stdout, !*g.noColor)
	case schemasCmd.FullCommand():
		s.apply(&cfg)
		return runSchemas(ctx, cfg)
	}
	return nil
}

func (v validateFlags) apply(cfg *samplecheck.Config) {
	setString(&cfg.Project, *v.project)
	setString(&cfg.Schema, *v.schema)
	setString(&cfg.Driver, *v.driver)
	setString(&cfg.Language, *v.lang)
	setString(&cfg.Output.Dir, *v.out)
	cfg.Output.Write = cfg.Output.Write || *v.write
	cfg.AllowComments = cfg.AllowComments || *v.allowComments
	cfg.SkipUnknownTypes = cfg.SkipUnknownTypes || *v.skipUnknownTypes
}

func (s schemasFlags) apply(cfg *samplecheck.Config) {
	setString(&cfg.Project, *s.project)
	setString(&cfg.Schema, *s.schema)
	setString(&cfg.Output.Dir, *s.out)
}

func runValidate(ctx context.Context, cfg samplecheck.Config, modules []string, out io.Writer, colored bool) error {
	i18n.SetLanguage(cfg.Language)
	opts, err := cfg.RunOptions()
	if err != nil {
		return err
	}
	schema, err := loadSchema(cfg, opts.Driver)
	if err != nil {
		return err
	}

	var res *samplecheck.Result
	if len(modules) == 0 {
		res, err = samplecheck.RunProject(ctx, cfg.Project, schema, opts)
	} else {
		res, err = runModules(ctx, cfg.Project, schema, opts, modules)
	}
	if err != nil {
		return err
	}

	newReporter(out, colored).report(res)

	if cfg.Output.Write {
		paths, err := samplecheck.WriteMerged(cfg.Project, cfg.Output.Dir, res.Records)
		if err != nil {
			return err
		}
		log := zerolog.Ctx(ctx)
		for _, p := range paths {
			log.Info().Str("path", p).Msg("wrote merged samples")
		}
	}
	if len(res.Diagnostics) > 0 {
		return errFindings
	}
	return nil
}

// runModules validates the listed modules in order with a single runner.
func runModules(ctx context.Context, root string, schema *samplecheck.TypeSchema, opts samplecheck.Options, modules []string) (*samplecheck.Result, error) {
	var files []string
	for _, m := range modules {
		if m == "default" {
			m = ""
		}
		found, err := samplecheck.DiscoverSampleFiles(root, m)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return samplecheck.NewRunner(schema, opts).Run(ctx, files)
}

func runSchemas(ctx context.Context, cfg samplecheck.Config) error {
	driver, err := samplecheck.DriverByName(cfg.Driver)
	if err != nil {
		return err
	}
	schema, err := loadSchema(cfg, driver)
	if err != nil {
		return err
	}
	paths, err := samplecheck.WriteSchemas(cfg.Project, cfg.Output.Dir, schema)
	if err != nil {
		return err
	}
	log := zerolog.Ctx(ctx)
	for _, p := range paths {
		log.Info().Str("path", p).Msg("wrote schema")
	}
	return nil
}

func loadConfig(path string) (samplecheck.Config, error) {
	if path == "" {
		return samplecheck.DefaultConfig(), nil
	}
	return samplecheck.LoadConfig(path)
}

func loadSchema(cfg samplecheck.Config, driver samplecheck.JSONDriver) (*samplecheck.TypeSchema, error) {
	if cfg.Schema == "" {
		return nil, errors.New("no schema feed given (use --schema or 'schema' in the config file)")
	}
	return samplecheck.LoadSchemaFile(cfg.Schema, driver)
}

func newLogger(level string, noColor bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Logger{}, errors.Wrap(err, "log level")
		}
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
