package main

import (
	"context"
	"fmt"
	"go/token"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonenv"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonstatic"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"github.com/kiteco/pyinfer/kite-golib/kitelog"
	"github.com/kr/pretty"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	Roots       []string      `arg:"positional" help:"python files or directories to analyze"`
	Path        []string      `arg:"-p" help:"search paths for imports, in priority order"`
	Limits      string        `help:"yaml file with analysis limits"`
	Stdlib      bool          `help:"start from the limits used for large library trees"`
	DumpLimits  bool          `arg:"--dump-limits" help:"print the effective limits and exit"`
	ListModules bool          `arg:"--list-modules" help:"list the modules of the session"`
	Query       []string      `arg:"-q" help:"expressions to describe at the end of each module"`
	PrintAST    bool          `arg:"--print-ast" help:"print the syntax tree of each module"`
	Watch       bool          `help:"keep running and re-analyze files as they change"`
	Timeout     time.Duration `help:"how long to wait for the analysis to settle"`
	Verbose     bool          `arg:"-v" help:"log debug messages"`
}

func main() {
	args := options{Timeout: 5 * time.Minute}
	arg.MustParse(&args)

	level := zapcore.InfoLevel
	if args.Verbose {
		level = zapcore.DebugLevel
	}
	logger := kitelog.New(os.Stderr, os.Stderr, level).WithDurations()
	defer logger.Sync()

	limits := pythontype.DefaultLimits()
	if args.Stdlib {
		limits = pythontype.StandardLibraryLimits()
	}
	fs := afero.NewOsFs()
	if args.Limits != "" {
		var err error
		limits, err = pythonenv.LoadLimits(fs, args.Limits)
		fail(err)
	}
	if args.DumpLimits {
		buf, err := pythonenv.MarshalLimits(limits)
		fail(err)
		fmt.Printf("%# v\n\n%s", pretty.Formatter(limits), buf)
		return
	}

	if len(args.Roots) == 0 {
		args.Roots = []string{"."}
	}
	var roots []string
	for _, root := range args.Roots {
		abs, err := filepath.Abs(root)
		fail(err)
		roots = append(roots, abs)
	}
	searchPaths := append([]string(nil), args.Path...)
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			searchPaths = append(searchPaths, root)
		}
	}

	opts := pythonstatic.DefaultOptions
	opts.Limits = limits
	opts.SearchPaths = searchPaths
	opts.Fs = fs
	opts.Logger = logger
	analyzer := pythonstatic.New(opts)
	analyzer.Start()
	defer analyzer.Close()

	start := time.Now()
	paths := addRoots(analyzer, fs, roots, limits)
	logger.Durations.Record("add modules", time.Since(start))

	start = time.Now()
	if !analyzer.WaitForIdle(args.Timeout) {
		logger.Warn("analysis did not settle", zap.Duration("timeout", args.Timeout))
	}
	logger.Durations.Record("analyze", time.Since(start))

	start = time.Now()
	for _, path := range paths {
		m := analyzer.Module(path)
		printModule(m, args.Query)
		if args.PrintAST && m != nil {
			pythonast.PrintPositions(m.Tree(), os.Stdout, "\t")
		}
	}
	logger.Durations.Record("print", time.Since(start))

	if args.ListModules {
		fmt.Println("modules:")
		fail(analyzer.Sources().WriteTable(os.Stdout))
	}
	printStats(analyzer)
	if errs := analyzer.Errors(); errs != nil {
		for _, err := range errs.Slice() {
			log.Println(err)
		}
	}
	logger.Info("done", zap.Duration("total", logger.Durations.Total()))
	logger.Durations.Flush(logger)

	if args.Watch {
		watch(analyzer, roots, args, logger)
	}
}

// addRoots adds every module below roots to the session and returns their
// paths
func addRoots(a *pythonstatic.Analyzer, fs afero.Fs, roots []string, limits pythontype.Limits) []string {
	resolver := pythonenv.NewResolver(fs, a.SearchPaths(), limits)
	var paths []string
	add := func(path string) {
		src, err := afero.ReadFile(fs, path)
		if err != nil {
			log.Println(err)
			return
		}
		if err := a.AddModule(path, src); err != nil {
			log.Println(err)
			return
		}
		paths = append(paths, path)
	}

	for _, root := range roots {
		info, err := fs.Stat(root)
		fail(err)
		if !info.IsDir() {
			add(root)
			continue
		}
		err = resolver.Walk(kitectx.Background(), root, func(c pythonenv.Candidate) error {
			add(c.Path)
			return nil
		})
		fail(err)
	}
	return paths
}

func printModule(m *pythonstatic.ModuleAnalysis, queries []string) {
	if m == nil {
		return
	}
	pos := m.Offset(1<<30, 1)
	fmt.Printf("== %s (%s)\n", m.Name(), m.Path())

	names := m.Names()
	sort.Strings(names)
	for _, name := range names {
		if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
			continue
		}
		var locator string
		if defs, err := m.Definitions(name, pos); err == nil && len(defs) > 0 {
			locator = pythonenv.SymbolLocator(defs[0], name)
		}
		fmt.Printf("  %-24s %-40s %s\n", name, describe(m, name, pos), locator)
	}
	for _, imp := range m.UnresolvedImports() {
		fmt.Printf("  unresolved %-13s %s\n", imp.Name, pythonenv.Locator(imp.Location))
	}
	for _, q := range queries {
		descs, err := m.Descriptions(q, pos)
		if err != nil {
			fmt.Printf("  ? %s: %v\n", q, err)
			continue
		}
		var parts []string
		for _, d := range descs {
			parts = append(parts, d.Long)
		}
		fmt.Printf("  ? %s: %s\n", q, strings.Join(parts, " | "))
	}
}

func describe(m *pythonstatic.ModuleAnalysis, name string, pos token.Pos) string {
	descs, err := m.Descriptions(name, pos)
	if err != nil || len(descs) == 0 {
		return "unknown"
	}
	var parts []string
	for _, d := range descs {
		parts = append(parts, d.Long)
	}
	return strings.Join(parts, " | ")
}

func printStats(a *pythonstatic.Analyzer) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := a.Stats()
	fmt.Printf("modules: %s, units run: %s, pending: %d, errors: %d, heap: %s\n",
		humanize.Comma(int64(s.Modules)), humanize.Comma(s.UnitsRun), s.Pending, s.Errors,
		humanize.Bytes(mem.HeapAlloc))
}

// watch applies file changes until interrupted, printing the modules that
// changed
func watch(a *pythonstatic.Analyzer, roots []string, args options, logger *kitelog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	events := make(chan []pythonenv.Event, 16)
	w, err := pythonenv.NewWatcher(ctx, roots, events, pythonenv.WatchOptions{
		OnDrop: func() { logger.Warn("dropped file events") },
		Logger: logger,
	})
	fail(err)
	defer w.Close()
	logger.Info("watching", zap.Strings("roots", roots), zap.Int64("directories", w.WatchCount()))

	for {
		select {
		case <-sigs:
			return
		case batch := <-events:
			if err := a.ApplyEvents(batch); err != nil {
				log.Println(err)
			}
			a.WaitForIdle(args.Timeout)
			for _, ev := range batch {
				if ev.Type == pythonenv.ModifiedEvent {
					printModule(a.Module(ev.Path), args.Query)
				}
			}
			printStats(a)
		}
	}
}
