// texfind resolves TeX resources (fonts, pictures, formats and sources) the
// way the engine does: from the filesystem first, then from the filesystem
// with the canonical extension of the format, and finally from an optional
// zip bundle.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/desertwitch/texfind/internal/bundle"
	"github.com/desertwitch/texfind/internal/configuration"
	"github.com/desertwitch/texfind/internal/format"
	"github.com/desertwitch/texfind/internal/resolver"
	"github.com/desertwitch/texfind/internal/schema"
	"github.com/desertwitch/texfind/internal/streams"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

//nolint:gochecknoglobals
var (
	ExitCode = exitOK
	Version  string
)

type flags struct {
	config    string
	bundle    string
	tmpDir    string
	verify    bool
	logLevel  string
	logOutput string
	version   bool
	opts      Options
}

func parseFlags(args []string) (*flags, []string, error) {
	f := &flags{}

	flagSet := pflag.NewFlagSet("texfind", pflag.ContinueOnError)
	flagSet.StringVar(&f.config, "config", configuration.DefaultPath, "path to the configuration file")
	flagSet.StringVar(&f.bundle, "bundle", "", "path to the bundle (overrides BUNDLE)")
	flagSet.StringVar(&f.tmpDir, "tmpdir", "", "directory for ephemeral files (overrides TMPDIR)")
	flagSet.BoolVar(&f.verify, "verify", false, "verify extracted entries (overrides VERIFY)")
	flagSet.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOGLEVEL)")
	flagSet.StringVar(&f.logOutput, "log-output", "", "also write JSON log records to this file")
	flagSet.IntVar(&f.opts.Code, "format", format.CodeTeXSource, "numeric format code of the requested names")
	flagSet.BoolVar(&f.opts.Cat, "cat", false, "write the resolved contents to standard output")
	flagSet.StringVar(&f.opts.OutputDir, "output-dir", "", "copy the resolved resources into this directory")
	flagSet.BoolVar(&f.opts.List, "list", false, "list the entries of the bundle")
	flagSet.BoolVar(&f.opts.FromStdin, "stdin", false, "read additional names from standard input")
	flagSet.BoolVar(&f.version, "version", false, "print the version")

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return f, flagSet.Args(), nil
}

func setupLogging(level slog.Level, logOutput string) (io.Closer, error) {
	manager := NewSlogManager()
	manager.AddHandler("terminal", tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	var closer io.Closer = io.NopCloser(nil)

	if logOutput != "" {
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:mnd
		if err != nil {
			return nil, fmt.Errorf("failed to open log output: %w", err)
		}
		manager.AddHandler("file", slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		closer = f
	}

	slog.SetDefault(slog.New(manager))

	return closer, nil
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ExitCode = run(os.Args[1:])
}

func run(args []string) int {
	f, names, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return exitFatal
	}

	if f.version {
		fmt.Fprintf(os.Stdout, "texfind %s\n", Version)

		return exitOK
	}

	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

	conf, err := configHandler.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return exitFatal
	}
	applyFlags(conf, f)

	logCloser, err := setupLogging(conf.LogLevel, f.logOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return exitFatal
	}
	defer logCloser.Close()

	osProvider := &schema.OS{}
	unixProvider := &schema.Unix{}

	materializer := bundle.NewMaterializer(osProvider, unixProvider, conf.TmpDir, conf.Verify)
	resolverHandler := resolver.NewHandler(unixProvider, materializer)

	if conf.BundlePath != "" {
		if err := resolverHandler.OpenBundle(conf.BundlePath); err != nil {
			slog.Error("Failed to open the bundle.",
				"path", conf.BundlePath,
				"err", err,
			)

			return exitFatal
		}
	}

	provider, err := buildProviders(resolverHandler, f.opts)
	if err != nil {
		slog.Error("Failed to establish the stream providers.",
			"err", err,
		)

		return exitFatal
	}

	var report io.Writer = os.Stdout
	if f.opts.Cat {
		report = os.Stderr
	}

	code, err := NewApp(resolverHandler, provider, report, f.opts).Launch(names)
	if err != nil {
		slog.Error("Unrecoverable failure, aborting.",
			"err", err,
		)
	}

	return code
}

func applyFlags(conf *configuration.AppConfiguration, f *flags) {
	if f.bundle != "" {
		conf.BundlePath = f.bundle
	}
	if f.tmpDir != "" {
		conf.TmpDir = f.tmpDir
	}
	if f.verify {
		conf.Verify = true
	}
	if f.logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(f.logLevel)); err == nil {
			conf.LogLevel = level
		}
	}
}

// buildProviders assembles the ordered stream providers: the buffered primary
// input (if requested), the genuine standard output, resolver-backed named
// inputs and the output directory (if requested).
func buildProviders(res *resolver.Handler, opts Options) (streams.Chain, error) {
	var chain streams.Chain

	if opts.FromStdin {
		primary, err := streams.BufferedPrimaryFromStdin()
		if err != nil {
			return nil, fmt.Errorf("(main) %w", err)
		}
		chain = append(chain, primary)
	}

	chain = append(chain, streams.NewGenuineStdout())

	if opts.Cat || opts.OutputDir != "" {
		fmtType, err := formatForCode(opts.Code)
		if err != nil {
			return nil, fmt.Errorf("(main) %w", err)
		}
		chain = append(chain, streams.NewResolverInput(res, fmtType))
	}

	if opts.OutputDir != "" {
		chain = append(chain, streams.NewDirOutput(opts.OutputDir))
	}

	return chain, nil
}
