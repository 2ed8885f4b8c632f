// Command swiftselect projects a fixed subset of delimited fields from each
// input record, like `cut -d, -f` with 0-based fields and a bounded memory
// footprint.
//
//	swiftselect -f 2,6 trips.csv.gz > out.csv
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/oleg578/swiftselect"
	"github.com/oleg578/swiftselect/internal/config"
	"github.com/oleg578/swiftselect/internal/metrics"
	"github.com/oleg578/swiftselect/internal/source"
)

const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// flags mirrors config.Config; empty or zero values leave the file/default value in place.
type flags struct {
	configFile    string
	fields        string
	delimiter     string
	separator     string
	maxFields     int
	maxRecordSize string
	bufferSize    string
	missing       string
	codec         string
	output        string
	logLevel      string
	logFormat     string
	textfile      string
	inputs        []string
}

func newApp(f *flags) *kingpin.Application {
	app := kingpin.New("swiftselect", "Project a fixed subset of delimited fields from each input record.")
	app.HelpFlag.Short('h')

	app.Flag("config", "YAML configuration file; flags override it.").PlaceHolder("FILE").StringVar(&f.configFile)
	app.Flag("fields", "0-based fields to emit, in order, e.g. 2,6 or 0-4.").Short('f').PlaceHolder("LIST").StringVar(&f.fields)
	app.Flag("delimiter", "Input field delimiter: a byte, an escape like \\t, or tab|space|pipe|semicolon|colon|comma|us.").Short('d').PlaceHolder(",").StringVar(&f.delimiter)
	app.Flag("separator", "Output field separator, same syntax as --delimiter.").Short('s').PlaceHolder(",").StringVar(&f.separator)
	app.Flag("max-fields", "Maximum fields per record; more is a fatal error.").PlaceHolder("65536").IntVar(&f.maxFields)
	app.Flag("max-record-size", "Maximum record length, e.g. 5MiB; longer is a fatal error.").PlaceHolder("SIZE").StringVar(&f.maxRecordSize)
	app.Flag("buffer-size", "Output buffer size, e.g. 64KiB.").PlaceHolder("SIZE").StringVar(&f.bufferSize)
	app.Flag("missing", "What to do when a record lacks a selected field.").PlaceHolder("fail").EnumVar(&f.missing, "fail", "empty")
	app.Flag("codec", "Input decompression; auto uses the file extension.").PlaceHolder("auto").EnumVar(&f.codec, "auto", "none", "gzip", "zstd")
	app.Flag("output", "Output file, - for stdout.").Short('o').PlaceHolder("FILE").StringVar(&f.output)
	app.Flag("log.level", "Log level.").PlaceHolder("info").EnumVar(&f.logLevel, "debug", "info", "warn", "error")
	app.Flag("log.format", "Log format.").PlaceHolder("console").EnumVar(&f.logFormat, "console", "json")
	app.Flag("metrics.textfile", "Write run counters to this file in Prometheus text format.").PlaceHolder("FILE").StringVar(&f.textfile)
	app.Arg("input", "Input files; none or - reads stdin. .gz and .zst are decompressed.").StringsVar(&f.inputs)
	return app
}

// apply overlays the flags that were given onto cfg.
func (f *flags) apply(cfg *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.Fields, f.fields)
	setString(&cfg.Delimiter, f.delimiter)
	setString(&cfg.Separator, f.separator)
	setString(&cfg.MaxRecordSize, f.maxRecordSize)
	setString(&cfg.BufferSize, f.bufferSize)
	setString(&cfg.Missing, f.missing)
	setString(&cfg.Codec, f.codec)
	setString(&cfg.Output, f.output)
	setString(&cfg.Log.Level, f.logLevel)
	setString(&cfg.Log.Format, f.logFormat)
	setString(&cfg.Metrics.Textfile, f.textfile)
	if f.maxFields != 0 {
		cfg.MaxFields = f.maxFields
	}
	if len(f.inputs) > 0 {
		cfg.Inputs = f.inputs
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	var f flags
	app := newApp(&f)
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	if _, err := app.Parse(args); err != nil {
		app.Errorf("%s, try --help", err)
		return exitUsage
	}

	cfg, err := config.Load(f.configFile)
	if err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}
	f.apply(&cfg)

	selCfg, err := cfg.ToSelect()
	if err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}
	codec, err := source.ParseCodec(cfg.Codec)
	if err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}

	logger := newLogger(cfg.Log, stderr)
	defer func() { _ = logger.Sync() }()

	start := time.Now()
	stats, runErr := project(cfg, selCfg, codec, stdout, logger)

	if cfg.Metrics.Textfile != "" {
		m := metrics.New()
		m.Observe(stats, runErr, time.Now())
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.Int64("records", stats.Records),
		zap.Int64("emitted", stats.Emitted),
		zap.Int64("skipped", stats.Skipped),
		zap.String("read", humanize.IBytes(uint64(stats.BytesRead))),
		zap.String("written", humanize.IBytes(uint64(stats.BytesWritten))),
		zap.Duration("elapsed", time.Since(start)),
	}
	if runErr != nil {
		logger.Error("projection failed", append(fields, zap.Error(runErr))...)
		return exitRun
	}
	logger.Info("projection finished", fields...)
	return exitOK
}

// project runs every input through one Selector into the configured output.
// The output is flushed and closed on every path.
func project(cfg config.Config, selCfg swiftselect.Config, codec source.Codec, stdout io.Writer, logger *zap.Logger) (stats swiftselect.Stats, err error) {
	dst := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		file, ferr := os.Create(cfg.Output)
		if ferr != nil {
			return stats, fmt.Errorf("open output: %w", ferr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = &swiftselect.WriteError{Err: cerr}
			}
		}()
		dst = file
	}

	sel, err := swiftselect.NewSelector(dst, selCfg)
	if err != nil {
		return stats, err
	}
	defer func() {
		err = swiftselect.JoinFlush(err, sel.Flush())
		stats = sel.Stats()
	}()

	inputs := cfg.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, name := range inputs {
		if err := runInput(sel, name, codec, logger); err != nil {
			return stats, fmt.Errorf("%s: %w", displayName(name), err)
		}
	}
	return stats, nil
}

func runInput(sel *swiftselect.Selector, name string, codec source.Codec, logger *zap.Logger) error {
	src, err := source.Open(name, codec)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	logger.Debug("reading input", zap.String("input", displayName(name)))
	before := sel.Stats().Records
	if err := sel.Run(src); err != nil {
		return err
	}
	logger.Debug("input done", zap.String("input", displayName(name)), zap.Int64("records", sel.Stats().Records-before))
	return nil
}

func displayName(name string) string {
	if source.IsStdin(name) {
		return "<stdin>"
	}
	return name
}
