// Package main implements the pushc CLI: flag handling, file-set
// expansion, and the compile driver around the query engine. Command
// implementations are split across cmd_*.go files:
//
//   - main.go        - entry point, rootCmd, global flags, compile driver
//   - triplet.go     - target-triplet parsing (-t)
//   - cmd_explain.go - `pushc explain <code>` long-form diagnostic docs
//   - cmd_inspect.go - `pushc inspect <file>` interactive AST browser
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pushc/internal/compiler"
	"pushc/internal/config"
	"pushc/internal/diag"
	"pushc/internal/lexer"
	"pushc/internal/logging"
	"pushc/internal/queryengine"
	"pushc/internal/render"
	"pushc/internal/watch"
)

const version = "0.2.0"

const (
	exitOK       = 0
	exitCmdError = 1
	// Exit status -1 as seen after os.Exit truncates to the low byte.
	exitInternal = -1 & 0xff
)

var (
	flagOutput  []string
	flagRun     bool
	flagTriplet string
	flagConfig  []string
	flagPrelude string
	flagThreads int
	flagColor   string
	flagClean   string
	flagWatch   bool
	flagVerbose bool
	stdlibDir   string
)

var rootCmd = &cobra.Command{
	Use:     "pushc [options] [files...]",
	Short:   "Compiler for the push language",
	Long:    "pushc compiles push source files through a query-driven incremental engine.\nThe surface grammar is loaded from a prelude file rather than being built in.",
	Version: version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runRoot,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVarP(&flagOutput, "output", "o", nil, "output files (comma-separated, appending)")
	f.BoolVarP(&flagRun, "run", "r", false, "run the compiled binary after linking")
	f.StringVarP(&flagTriplet, "triplet", "t", "", "target triplet (key=value list or dash-separated)")
	f.StringSliceVarP(&flagConfig, "config", "c", nil, "preference flags or key=value pairs")
	f.StringVar(&flagPrelude, "prelude", "", "prelude file overriding the standard one")
	f.IntVar(&flagThreads, "threads", 0, "worker threads (0 = auto)")
	f.StringVar(&flagColor, "color", "auto", "colored output: auto|always|never")
	f.StringVar(&flagClean, "clean", "", "clean cached state; pass 'global' for the user-wide cache")
	f.Lookup("clean").NoOptDefVal = "local"
	f.BoolVar(&flagWatch, "watch", false, "recompile when a source file changes")
	f.BoolVar(&flagVerbose, "verbose", false, "verbose internal logging")
	f.StringVar(&stdlibDir, "stdlib", defaultStdlibDir(), "standard library directory")

	rootCmd.SetVersionTemplate("pushc {{.Version}}\n")
	rootCmd.AddCommand(explainCmd, inspectCmd)
}

// exitCode is set by runRoot and applied in main after every deferred
// teardown (worker join, log flush) has run.
var exitCode = exitOK

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pushc:", err)
		os.Exit(exitCmdError)
	}
	os.Exit(exitCode)
}

// defaultStdlibDir resolves the stdlib next to the executable, falling
// back to the working directory during development.
func defaultStdlibDir() string {
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), "stdlib")
		if st, err := os.Stat(cand); err == nil && st.IsDir() {
			return cand
		}
	}
	return "stdlib"
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := logging.Init(flagVerbose); err != nil {
		return err
	}
	defer logging.Sync()

	if flagClean != "" {
		// There is no persistent cache: the query cache lives in memory
		// for the process lifetime. --clean exists for workflow parity
		// and says so instead of silently succeeding.
		fmt.Printf("nothing to clean (%s): pushc keeps no on-disk cache\n", flagClean)
		if len(args) == 0 {
			return nil
		}
	}

	if len(args) == 0 {
		return fmt.Errorf("no input files")
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	proj, err := config.LoadProjectConfig(filepath.Join(".push", "config.yaml"))
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("color") && proj.Color != "" {
		flagColor = string(proj.Color)
	}
	if flagTriplet == "" {
		flagTriplet = proj.Triplet
	}

	mode := config.ColorMode(flagColor)
	switch mode {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return fmt.Errorf("invalid --color mode %q", flagColor)
	}

	threads := flagThreads
	if threads == 0 {
		threads = proj.Threads
	}
	if threads == 0 {
		threads = 2 * runtime.NumCPU()
	}
	preludeFile := flagPrelude
	if preludeFile == "" {
		preludeFile = proj.Prelude
	}

	exitCode = compileDriver(files, threads, preludeFile, mode)
	return nil
}

// compileDriver owns the engine for one invocation: setup, preference
// application, the per-file query fan-out, diagnostic rendering, and
// the optional watch loop.
func compileDriver(files []string, threads int, preludeFile string, mode config.ColorMode) int {
	sink := diag.NewSink(diag.DefaultCaps())
	gc, _, err := queryengine.Setup(threads, 64, sink)
	if err != nil {
		return exitInternal
	}
	defer gc.WaitFinished()

	if err := applyConfigFlags(gc.Prefs, flagConfig); err != nil {
		fmt.Fprintln(os.Stderr, "pushc:", err)
		return exitCmdError
	}
	triplet, err := ParseTriplet(flagTriplet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pushc:", err)
		return exitCmdError
	}
	triplet.Store(gc.Prefs)
	for i, out := range flagOutput {
		gc.Prefs.Set("output."+strconv.Itoa(i), out)
	}

	renderer := render.New(mode)
	opts := compiler.Options{PreludeFile: preludeFile, StdlibDir: stdlibDir}
	if tw, ok := gc.Prefs.GetInt(config.TabWidthKey); ok {
		opts.TabWidth = tw
	}

	// One unit context per file, kept across watch passes so the unit
	// id (and with it every memoised query signature) stays stable.
	units := make(map[string]*queryengine.UnitContext, len(files))
	for _, file := range files {
		units[file] = compiler.NewUnit(gc, file)
	}

	pass := func() int {
		compileAll(gc, units, files, opts, sink)
		printDiagnostics(renderer, sink, files)
		if sink.HasErrors() {
			return exitCmdError
		}
		if flagRun {
			fmt.Println("note: --run is not available, this build stops after the front-end")
		}
		return exitOK
	}
	code := pass()

	if flagWatch {
		w, err := watch.New(files)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pushc: watch:", err)
			return exitInternal
		}
		defer w.Close()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			w.Close()
		}()

		fmt.Println("watching for changes, interrupt to stop")
		w.Run(func(path string) {
			gc.Reset()
			sink = diag.NewSink(diag.DefaultCaps())
			gc.Sink = sink
			code = pass()
		})
	}
	return code
}

// compileAll fans the file set out over the worker pool with an
// errgroup, one goroutine per worker so each worker's unit context has
// a single owner; the engine memoises shared sub-queries (the prelude
// in particular loads once regardless of file count).
func compileAll(gc *queryengine.GlobalContext, units map[string]*queryengine.UnitContext, files []string, opts compiler.Options, sink *diag.Sink) {
	workers := gc.Workers()
	var g errgroup.Group
	for i, w := range workers {
		i, w := i, w
		g.Go(func() error {
			for j := i; j < len(files); j += len(workers) {
				file := files[j]
				w.SetUnitCtx(units[file])
				if _, err := compiler.GetAST(w, file, opts, sink); err == queryengine.ErrAbortCompilation {
					return err
				}
				// Other failures were already recorded as diagnostics.
			}
			return nil
		})
	}
	_ = g.Wait()
}

func printDiagnostics(renderer *render.Renderer, sink *diag.Sink, files []string) {
	inputs := make(map[string]lexer.Input, len(files))
	for _, d := range sink.All() {
		var in lexer.Input
		if d.Pos.File != nil {
			path := d.Pos.File.Path
			if cached, ok := inputs[path]; ok {
				in = cached
			} else if opened, err := lexer.NewFileInput(path); err == nil {
				in = opened
				inputs[path] = opened
			}
		}
		fmt.Fprint(os.Stderr, renderer.Render(d, in))
	}
}

// expandFiles resolves doublestar glob patterns and passes plain paths
// through, so `pushc 'src/**/*.push'` works without shell support.
func expandFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// applyConfigFlags installs -c entries: `key=value` pairs become typed
// preferences (bool/int recognised), bare words become true flags.
func applyConfigFlags(prefs *config.Preferences, entries []string) error {
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if key == "" {
			return fmt.Errorf("empty -c entry")
		}
		if !found {
			prefs.Set(key, true)
			continue
		}
		switch {
		case value == "true" || value == "false":
			prefs.Set(key, value == "true")
		default:
			if n, err := strconv.Atoi(value); err == nil {
				prefs.Set(key, n)
			} else {
				prefs.Set(key, value)
			}
		}
	}
	return nil
}
