package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/desertwitch/texfind/internal/format"
	"github.com/desertwitch/texfind/internal/resolver"
	"github.com/desertwitch/texfind/internal/streams"
)

const (
	exitOK      = 0
	exitFatal   = 1
	exitMissing = 2
)

// Options are the per-run choices of the [App].
type Options struct {
	Code      int
	Cat       bool
	List      bool
	FromStdin bool
	OutputDir string
}

// App resolves the requested names and reports or copies the results.
type App struct {
	resolver *resolver.Handler
	streams  streams.Provider
	report   io.Writer
	opts     Options
}

// NewApp returns a pointer to a new [App].
func NewApp(res *resolver.Handler, provider streams.Provider, report io.Writer, opts Options) *App {
	return &App{
		resolver: res,
		streams:  provider,
		report:   report,
		opts:     opts,
	}
}

// Launch runs the [App] for the given names and returns the exit code. Any
// returned error is unrecoverable.
func (app *App) Launch(names []string) (int, error) {
	if app.opts.List {
		if err := app.list(); err != nil {
			return exitFatal, fmt.Errorf("(app) %w", err)
		}

		return exitOK, nil
	}

	if app.opts.FromStdin {
		more, err := app.namesFromPrimaryInput()
		if err != nil {
			return exitFatal, fmt.Errorf("(app) %w", err)
		}
		names = append(names, more...)
	}

	missing := 0

	for _, name := range names {
		found, err := app.handle(name)
		if err != nil {
			return exitFatal, fmt.Errorf("(app) %w", err)
		}
		if !found {
			missing++
		}
	}

	if missing > 0 {
		slog.Warn("Some resources could not be resolved",
			"missing", missing,
			"requested", len(names),
		)

		return exitMissing, nil
	}

	return exitOK, nil
}

func (app *App) list() error {
	if !app.resolver.HasBundle() {
		return ErrNoBundle
	}

	for _, name := range app.resolver.Entries() {
		renderEntry(app.report, name)
	}

	return nil
}

func (app *App) handle(name string) (bool, error) {
	if app.opts.Cat || app.opts.OutputDir != "" {
		return app.copyOut(name)
	}

	d, err := app.resolver.ResolveCode(name, app.opts.Code, true)
	if err != nil {
		return false, err
	}
	if d == nil {
		renderMissing(app.report, name)

		return false, nil
	}
	defer d.Close()

	size, err := d.Size()
	if err != nil {
		return false, fmt.Errorf("failed to get size of %s: %w", name, err)
	}

	renderFound(app.report, name, d.Name(), d.Origin(), size)

	return true, nil
}

// copyOut copies a resolved resource to the standard output or into the
// output directory, going through the stream providers.
func (app *App) copyOut(name string) (bool, error) {
	in, err := app.streams.OpenInput(name)
	if err != nil {
		if errors.Is(err, streams.ErrNotAvailable) {
			renderMissing(app.report, name)

			return false, nil
		}

		return false, err
	}
	defer in.Close()

	var out streams.OutputHandle
	if app.opts.Cat {
		out, err = app.streams.OpenStdout()
	} else {
		out, err = app.streams.OpenOutput(filepath.Base(in.Name()))
	}
	if err != nil {
		return false, fmt.Errorf("failed to open output for %s: %w", name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return false, fmt.Errorf("failed to copy %s: %w", name, err)
	}

	slog.Debug("Copied resource",
		"name", name,
		"bytes", n,
	)

	return true, nil
}

// namesFromPrimaryInput reads one name per line from the primary input. The
// input is passed twice, once for counting and once for reading.
func (app *App) namesFromPrimaryInput() ([]string, error) {
	counter, err := app.streams.OpenPrimaryInput()
	if err != nil {
		return nil, fmt.Errorf("failed to open primary input: %w", err)
	}
	defer counter.Close()

	count := 0
	scanner := bufio.NewScanner(counter)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan primary input: %w", err)
	}

	reader, err := app.streams.OpenPrimaryInput()
	if err != nil {
		return nil, fmt.Errorf("failed to reopen primary input: %w", err)
	}
	defer reader.Close()

	names := make([]string, 0, count)
	scanner = bufio.NewScanner(reader)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read primary input: %w", err)
	}

	return names, nil
}

func formatForCode(code int) (format.Format, error) {
	f, ok := format.Classify(code)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, code)
	}

	return f, nil
}
