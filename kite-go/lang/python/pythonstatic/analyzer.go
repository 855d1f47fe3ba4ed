package pythonstatic

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonenv"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonparser"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"github.com/kiteco/pyinfer/kite-golib/kitelog"
	"github.com/kiteco/pyinfer/kite-golib/rollbar"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options configures an analysis session
type Options struct {
	// Limits bound the growth of unions and call chains. They cannot change
	// during a session.
	Limits pythontype.Limits
	// SearchPaths are searched, in order, for modules that are imported but
	// were not added explicitly
	SearchPaths []string
	// Fs is the file system imported modules are read from. Defaults to the
	// OS file system.
	Fs afero.Fs
	// QueryCacheSize is the number of query results kept between changes
	QueryCacheSize int
	// Logger receives analysis events. Defaults to discarding them.
	Logger *kitelog.Logger
}

// DefaultOptions are the options used for user code
var DefaultOptions = Options{
	Limits:         pythontype.DefaultLimits(),
	QueryCacheSize: 4096,
}

// Stats summarizes the work done by an analyzer
type Stats struct {
	Modules  int
	UnitsRun int64
	Pending  int
	Errors   int
}

// Analyzer owns an analysis session: the modules being analyzed, the queue of
// units to run and the goroutine draining it. Every namespace of the session
// is guarded by the analyzer's lock: the drain holds it for writing while a
// unit runs and queries hold it for reading.
type Analyzer struct {
	opts   Options
	logger *kitelog.Logger
	state  *pythontype.State
	queue  *Queue
	cache  *lru.Cache

	mu         sync.RWMutex
	resolver   *pythonenv.Resolver
	sources    *pythonenv.SourceTree
	graph      *importGraph
	defs       map[*pythontype.ModuleEntry]*definitions
	missing    map[string]bool
	generation uint64
	unitsRun   int64

	// evalMu serializes query evaluation, which fills shared caches
	evalMu sync.Mutex

	errMu sync.Mutex
	errs  errors.Errors

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// New creates an analyzer. Units are only run once Start is called.
func New(opts Options) *Analyzer {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = kitelog.Discard
	}
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = DefaultOptions.QueryCacheSize
	}
	cache, err := lru.New(opts.QueryCacheSize)
	if err != nil {
		rollbar.Error(errors.Wrapf(err, "error creating query cache"))
	}

	logger := opts.Logger.Named("pythonstatic")
	queue := NewQueue(logger)
	ctx, cancel := context.WithCancel(context.Background())
	a := &Analyzer{
		opts:    opts,
		logger:  logger,
		state:   pythontype.NewState(opts.Limits, logger, queue),
		queue:   queue,
		cache:   cache,
		sources: pythonenv.NewSourceTree(),
		graph:   newImportGraph(),
		defs:    make(map[*pythontype.ModuleEntry]*definitions),
		missing: make(map[string]bool),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	a.sources.PreferStubs = a.state.Limits.UseTypeStubPackages || a.state.Limits.UseTypeStubPackagesExclusively
	a.resolver = pythonenv.NewResolver(opts.Fs, opts.SearchPaths, a.state.Limits)
	return a
}

// Limits returns the limits of the session
func (a *Analyzer) Limits() pythontype.Limits {
	return a.state.Limits
}

// Start launches the goroutine that runs queued units
func (a *Analyzer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true
	go func() {
		defer close(a.done)
		err := kitectx.FromContext(a.ctx, a.drain)
		if err != nil && a.ctx.Err() == nil {
			rollbar.Error(errors.Wrapf(err, "analysis stopped"))
		}
	}()
}

// Close stops the analysis. Pending units are dropped and a unit that is
// running is aborted.
func (a *Analyzer) Close() {
	a.cancel()
	a.queue.Stop()

	a.mu.RLock()
	started := a.started
	a.mu.RUnlock()
	if started {
		<-a.done
	}
}

func (a *Analyzer) drain(ctx kitectx.Context) error {
	for {
		u := a.queue.next()
		if u == nil {
			return nil
		}
		a.runQueued(ctx, u)
	}
}

// runQueued runs one unit taken from the queue under the write lock
func (a *Analyzer) runQueued(ctx kitectx.Context, u *pythontype.AnalysisUnit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.queue.done(u)
	defer func() {
		if r := recover(); r != nil {
			if ctx.Expired() {
				panic(r)
			}
			rollbar.PanicRecovery(r, u.String())
		}
	}()

	a.generation++
	a.unitsRun++
	a.runUnit(ctx, u)
	if u.Kind == pythontype.ModuleUnit {
		a.moduleUnitDone(u)
	}
}

// runUnit walks a unit. Units other than the queued one, such as class
// bodies and comprehensions, are run inline by their parent.
func (a *Analyzer) runUnit(ctx kitectx.Context, u *pythontype.AnalysisUnit) {
	ctx.CheckAbort()
	w := newWalker(ctx, a, u)
	switch u.Kind {
	case pythontype.ModuleUnit:
		w.module()
	case pythontype.ClassUnit:
		w.classBody()
	case pythontype.FunctionUnit:
		w.function()
	case pythontype.ComprehensionUnit:
		w.comprehensionBody()
	}
}

// -- modules

// AddModule adds or replaces the source of the module stored at path and
// queues its analysis
func (a *Analyzer) AddModule(path string, src []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if entry := a.sources.File(path); entry != nil && !entry.Removed() {
		return a.updateLocked(entry, src)
	}
	c, err := a.resolver.ModuleName(path)
	if err != nil {
		err = errors.NewHostError(path, err, "cannot name module")
		a.recordError(err)
		return err
	}
	_, err = a.addLocked(c, src)
	return err
}

// UpdateModule replaces the source of a module. Modules that are not known
// yet are added.
func (a *Analyzer) UpdateModule(path string, src []byte) error {
	return a.AddModule(path, src)
}

// addLocked creates the entry for a module file and queues its module unit
func (a *Analyzer) addLocked(c pythonenv.Candidate, src []byte) (*pythontype.ModuleEntry, error) {
	tree, lines, err := a.parse(c.Path, src)
	if err != nil {
		return nil, err
	}

	entry := pythontype.NewModuleEntry(c.Name, filepath.Clean(c.Path))
	entry.IsPackage = c.IsPackage
	entry.IsStub = c.IsStub
	entry.Tree = tree
	entry.Lines = lines
	pythontype.NewModuleInfo(entry)

	a.sources.AddFile(entry)
	a.forgetMissing()
	a.generation++
	a.logger.Debug("added module", zap.String("name", c.Name.String()), zap.String("path", c.Path))

	entry.Module.NewUnit(a.state).Enqueue(pythontype.NormalPriority)
	for _, waiter := range a.graph.resolved(c.Name.String()) {
		a.reanalyze(waiter)
	}
	return entry, nil
}

// reanalyze starts a new version of a module and of the modules importing
// it, without changing their source
func (a *Analyzer) reanalyze(entry *pythontype.ModuleEntry) {
	if a.restart(entry, pythontype.NormalPriority) {
		a.enqueueImporters(entry)
	}
}

// restart bumps the version of a module so that the bindings, values and
// unresolved imports of the old version are dropped, and queues a new module
// unit. It returns false for removed modules.
func (a *Analyzer) restart(entry *pythontype.ModuleEntry, p pythontype.Priority) bool {
	if entry.Removed() || entry.Module == nil {
		return false
	}
	entry.Bump()
	delete(a.defs, entry)
	entry.Module.NewUnit(a.state).Enqueue(p)
	return true
}

func (a *Analyzer) updateLocked(entry *pythontype.ModuleEntry, src []byte) error {
	tree, lines, err := a.parse(entry.Path, src)
	if err != nil {
		return err
	}
	entry.Bump()
	entry.Tree = tree
	entry.Lines = lines
	delete(a.defs, entry)
	a.generation++
	a.logger.Debug("updated module", zap.String("path", entry.Path), zap.Int("version", entry.Version()))

	entry.Module.NewUnit(a.state).Enqueue(pythontype.NormalPriority)
	a.enqueueImporters(entry)
	return nil
}

// parse builds the tree for a module. Syntax errors do not prevent the
// analysis of the statements that could be parsed.
func (a *Analyzer) parse(path string, src []byte) (*pythonast.Module, *pythonast.LineMap, error) {
	ctx := kitectx.Background().WithLogger(a.logger)
	tree, err := pythonparser.Parse(ctx, src, pythonparser.Options{ErrorMode: pythonparser.Recover})
	if tree == nil {
		if err == nil {
			err = errors.Errorf("no syntax tree")
		}
		herr := errors.NewHostError(path, errors.WithStack(err), "cannot parse module")
		a.recordError(herr)
		return nil, nil, herr
	}
	if err != nil {
		a.logger.Debug("syntax errors in module", zap.String("path", path), zap.Error(err))
	}
	return tree, pythonast.NewLineMap(src), nil
}

// enqueueImporters restarts the modules importing entry at low priority, up
// to the cross-module limit of import edges away. An importer keeps values it
// copied out of the old version, such as constants, until it is restarted.
func (a *Analyzer) enqueueImporters(entry *pythontype.ModuleEntry) {
	limit := a.state.Limits.CrossModule
	seen := map[*pythontype.ModuleEntry]bool{entry: true}
	frontier := []*pythontype.ModuleEntry{entry}
	for depth := 1; len(frontier) > 0 && (limit == 0 || depth <= limit); depth++ {
		var next []*pythontype.ModuleEntry
		for _, e := range frontier {
			for _, importer := range a.graph.importersOf(e) {
				if seen[importer] {
					continue
				}
				seen[importer] = true
				if a.restart(importer, pythontype.LowPriority) {
					next = append(next, importer)
				}
			}
		}
		frontier = next
	}
}

func (a *Analyzer) enqueueModule(entry *pythontype.ModuleEntry, p pythontype.Priority) {
	if entry.Removed() || entry.Module == nil || entry.Module.Unit == nil {
		return
	}
	entry.Module.Unit.Enqueue(p)
}

// RemoveModule drops the module stored at path. Every module importing it is
// analyzed again from scratch. It returns false if the module is unknown.
func (a *Analyzer) RemoveModule(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.sources.RemoveFile(path)
	if entry == nil {
		return false
	}
	entry.Remove()
	delete(a.defs, entry)
	a.generation++
	a.logger.Debug("removed module", zap.String("path", entry.Path))

	if parent := a.sources.ImportAbs(entry.Name.Predecessor()); parent != nil && !entry.Name.Predecessor().Empty() {
		if parent.Module.Child(entry.Name.Last()) == entry.Module {
			parent.Module.RemoveChild(entry.Name.Last())
		}
	}

	for _, importer := range a.graph.remove(entry) {
		a.reanalyze(importer)
	}
	return true
}

// Enqueue schedules a unit
func (a *Analyzer) Enqueue(u *pythontype.AnalysisUnit, p pythontype.Priority) {
	a.queue.Enqueue(u, p)
}

// IsAnalyzing returns true while units are waiting or running
func (a *Analyzer) IsAnalyzing() bool {
	return a.queue.IsAnalyzing()
}

// WaitForIdle blocks until every queued unit has run or timeout elapses,
// returning true in the first case
func (a *Analyzer) WaitForIdle(timeout time.Duration) bool {
	return a.queue.WaitForIdle(timeout)
}

// SetSearchPaths replaces the search paths. Modules with unresolved imports
// are analyzed again.
func (a *Analyzer) SetSearchPaths(paths ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resolver = pythonenv.NewResolver(a.opts.Fs, paths, a.state.Limits)
	a.forgetMissing()
	a.generation++
	for _, entry := range a.sources.Entries() {
		if len(entry.Module.UnresolvedImports()) > 0 {
			a.reanalyze(entry)
		}
	}
}

// SearchPaths returns the current search paths
func (a *Analyzer) SearchPaths() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolver.SearchPaths()
}

// Errors returns the host errors met so far, or nil
func (a *Analyzer) Errors() errors.Errors {
	a.errMu.Lock()
	defer a.errMu.Unlock()
	return a.errs
}

func (a *Analyzer) recordError(err error) {
	a.errMu.Lock()
	defer a.errMu.Unlock()
	a.errs = errors.Append(a.errs, err)
	a.logger.Warn("host error", zap.Error(err))
}

func (a *Analyzer) forgetMissing() {
	if len(a.missing) > 0 {
		a.missing = make(map[string]bool)
	}
}

// Stats returns counters describing the session
func (a *Analyzer) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Stats{
		Modules:  len(a.sources.Files),
		UnitsRun: a.unitsRun,
		Pending:  a.queue.Len(),
	}
	if errs := a.Errors(); errs != nil {
		s.Errors = errs.Len()
	}
	return s
}

// Sources returns a flat listing of the modules in the session
func (a *Analyzer) Sources() pythonenv.FlatSourceTree {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sources.Flatten()
}

// Paths returns the paths of the modules in the session
func (a *Analyzer) Paths() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []string
	for path := range a.sources.Files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// ApplyEvents adds, updates and removes modules as reported by a file
// watcher. Files are read from the analyzer's file system.
func (a *Analyzer) ApplyEvents(events []pythonenv.Event) error {
	var errs errors.Errors
	for _, ev := range events {
		switch ev.Type {
		case pythonenv.ModifiedEvent:
			src, err := afero.ReadFile(a.opts.Fs, ev.Path)
			if err != nil {
				herr := errors.NewHostError(ev.Path, errors.WithStack(err), "cannot read module")
				a.recordError(herr)
				errs = errors.Append(errs, herr)
				continue
			}
			errs = errors.Append(errs, a.UpdateModule(ev.Path, src))
		case pythonenv.RemovedEvent:
			a.RemoveModule(ev.Path)
		}
	}
	if errs == nil {
		return nil
	}
	return errs
}
