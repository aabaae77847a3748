// Package engine is the explicit context every editor-facing operation
// runs against: the open source units, the package cache, the directory
// index and the background highlighter.
package engine

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/walteh/golens/pkg/cache"
	"github.com/walteh/golens/pkg/config"
	"github.com/walteh/golens/pkg/semtok"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// ErrNotOpen is returned for queries on files that were never opened.
var ErrNotOpen = errors.Base("file is not open")

// highlights are the published tokens of one revision.
type highlights struct {
	rev    int
	run    string
	tokens []semtok.Token
	done   bool
}

type openFile struct {
	unit *source.Unit
	// parsed is the newest parse the package cache has seen.
	parsed *source.Parsed
	timer  *time.Timer
	cancel context.CancelFunc // pending or running parse
	hl     highlights
}

// Engine owns all analysis state. Its methods are safe for concurrent
// use.
type Engine struct {
	cfg      *config.Config
	fs       afero.Fs
	resolver *cache.PathResolver
	cache    *cache.Cache
	index    *cache.Indexer
	checker  *semtok.Runner

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	cond   *sync.Cond
	files  map[string]*openFile
	closed bool
}

// New builds an engine over fs. The logger on ctx is used by every
// background task; cancelling ctx stops them.
func New(ctx context.Context, fs afero.Fs, cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config: %w", err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Errorf("resolving root %q: %w", cfg.Root, err)
	}
	gopath := filepath.SplitList(cfg.GoPath)
	resolver, err := cache.NewPathResolver(fs, root, cfg.GoRoot, gopath)
	if err != nil {
		return nil, errors.Errorf("creating path resolver: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		fs:       fs,
		resolver: resolver,
		files:    map[string]*openFile{},
	}
	e.cond = sync.NewCond(&e.mu)
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.cache = cache.New(e.ctx, cache.Options{
		Fs:           fs,
		Resolver:     resolver,
		MaxWorkers:   cfg.MaxImportWorkers,
		SkipPatterns: cfg.SkipPatterns,
		Overlay:      e.overlay,
	})
	e.index = cache.NewIndexer(fs, cfg.SkipPatterns, append([]string{cfg.GoRoot}, gopath...)...)
	e.checker = semtok.NewRunner(e.acquire, e.revision, cfg.CheckChunkSize)

	zerolog.Ctx(ctx).Debug().Str("root", root).Str("module", resolver.ModulePath()).Msg("engine started")
	return e, nil
}

// ScanIndex refreshes the package index used by completion in the
// background. The returned channel closes when the scan ends.
func (e *Engine) ScanIndex() <-chan struct{} {
	done := make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)
		if err := e.index.Scan(e.ctx); err != nil {
			zerolog.Ctx(e.ctx).Warn().Err(err).Msg("package index scan failed")
		}
	}()
	return done
}

func (e *Engine) acquire() (types.World, func()) {
	return e.cache.Acquire()
}

// overlay lets the importer see open files instead of their disk text.
func (e *Engine) overlay(path string) *source.Parsed {
	e.mu.Lock()
	f := e.files[path]
	e.mu.Unlock()
	if f == nil {
		return nil
	}
	return f.unit.Parsed()
}

func (e *Engine) file(path string) *openFile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.files[path]
}

// revision returns the current revision of an open file, or -1.
func (e *Engine) revision(path string) int {
	if f := e.file(path); f != nil {
		return f.unit.Revision()
	}
	return -1
}

// Open starts tracking path with text and parses it right away.
// Reopening a file replaces its text.
func (e *Engine) Open(ctx context.Context, path string, text []byte) (int, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, errors.New("engine is closed")
	}
	f := e.files[path]
	if f == nil {
		f = &openFile{unit: source.NewUnit(path, text)}
		e.files[path] = f
		e.mu.Unlock()
		return f.unit.Revision(), e.schedule(ctx, path, 0)
	}
	e.mu.Unlock()
	return e.Edit(ctx, path, text)
}

// OpenFile opens path with its content on the engine's file system.
func (e *Engine) OpenFile(ctx context.Context, path string) (int, error) {
	text, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", path, err)
	}
	return e.Open(ctx, path, text)
}

// Edit replaces the text of an open file and schedules a reparse after
// the configured delay. Edits arriving within the delay coalesce into one
// parse. It returns the new revision.
func (e *Engine) Edit(ctx context.Context, path string, text []byte) (int, error) {
	f := e.file(path)
	if f == nil {
		return 0, errors.Errorf("editing %s: %w", path, ErrNotOpen)
	}
	rev := f.unit.SetText(text)
	return rev, e.schedule(ctx, path, e.cfg.ReparseDelay)
}

// schedule replaces any pending or running parse of path with one that
// starts after delay.
func (e *Engine) schedule(ctx context.Context, path string, delay time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("engine is closed")
	}
	f := e.files[path]
	if f == nil {
		return errors.Errorf("scheduling %s: %w", path, ErrNotOpen)
	}
	if f.timer != nil && f.timer.Stop() {
		e.wg.Done()
	}
	if f.cancel != nil {
		f.cancel()
	}
	pctx, cancel := context.WithCancel(e.ctx)
	pctx = zerolog.Ctx(ctx).WithContext(pctx)
	f.cancel = cancel
	e.wg.Add(1)
	f.timer = time.AfterFunc(delay, func() {
		defer e.wg.Done()
		e.reparse(pctx, f)
	})
	return nil
}

// reparse parses the unit's latest text and publishes the result.
func (e *Engine) reparse(ctx context.Context, f *openFile) {
	if ctx.Err() != nil {
		return
	}
	text, rev := f.unit.Text()
	p := source.Parse(f.unit.Path, text, rev)
	if ctx.Err() != nil || !f.unit.Commit(p) {
		zerolog.Ctx(ctx).Debug().Str("file", p.Path).Int("revision", rev).Msg("parse superseded")
		return
	}
	e.cache.Update(ctx, p)

	e.mu.Lock()
	if f.parsed == nil || f.parsed.Revision < p.Revision {
		f.parsed = p
	}
	e.cond.Broadcast()
	e.mu.Unlock()
	zerolog.Ctx(ctx).Debug().Str("file", p.Path).Int("revision", rev).Int("diagnostics", len(p.Diagnostics)).Msg("parsed")

	// highlight once the imports the parse queued have settled, so names
	// of other packages resolve
	if err := e.cache.Wait(ctx); err != nil {
		return
	}
	e.checker.Start(ctx, p, func(c semtok.Chunk) { e.publish(f, c) })
}

// publish records a highlight chunk. The checker calls it with its own
// lock held.
func (e *Engine) publish(f *openFile, c semtok.Chunk) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f.hl.run != c.Run {
		f.hl = highlights{rev: c.Revision, run: c.Run}
	}
	f.hl.tokens = append(f.hl.tokens, c.Tokens...)
	f.hl.done = c.Done
	e.cond.Broadcast()
}

// OpenFiles returns the paths of the open files, sorted.
func (e *Engine) OpenFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.files))
	for path := range e.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Close stops tracking path. Its last parse stays in the package cache.
func (e *Engine) Close(path string) {
	e.mu.Lock()
	f := e.files[path]
	delete(e.files, path)
	if f != nil {
		if f.timer != nil && f.timer.Stop() {
			e.wg.Done()
		}
		if f.cancel != nil {
			f.cancel()
		}
	}
	e.cond.Broadcast()
	e.mu.Unlock()
	e.checker.Cancel(path)
}

// Await blocks until path has a committed parse of at least rev, and
// returns it.
func (e *Engine) Await(ctx context.Context, path string, rev int) (*source.Parsed, error) {
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		f := e.files[path]
		if f == nil {
			return nil, errors.Errorf("awaiting %s: %w", path, ErrNotOpen)
		}
		if f.parsed != nil && f.parsed.Revision >= rev {
			return f.parsed, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("awaiting %s revision %d: %w", path, rev, err)
		}
		e.cond.Wait()
	}
}

// Current waits for the parse of the file's latest revision.
func (e *Engine) Current(ctx context.Context, path string) (*source.Parsed, error) {
	f := e.file(path)
	if f == nil {
		return nil, errors.Errorf("%s: %w", path, ErrNotOpen)
	}
	return e.Await(ctx, path, f.unit.Revision())
}

// AwaitHighlights blocks until the highlighter finished revision rev of
// path, or a later one.
func (e *Engine) AwaitHighlights(ctx context.Context, path string, rev int) ([]semtok.Token, error) {
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		f := e.files[path]
		if f == nil {
			return nil, errors.Errorf("highlights of %s: %w", path, ErrNotOpen)
		}
		if f.hl.done && f.hl.rev >= rev {
			return append([]semtok.Token(nil), f.hl.tokens...), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("awaiting highlights of %s: %w", path, err)
		}
		e.cond.Wait()
	}
}

// WaitImports blocks until the package cache has no queued imports.
func (e *Engine) WaitImports(ctx context.Context) error {
	return e.cache.Wait(ctx)
}

// Packages returns the indexed packages.
func (e *Engine) Packages() []cache.Entry {
	return e.index.Entries()
}

// Resolver maps import paths to directories.
func (e *Engine) Resolver() *cache.PathResolver {
	return e.resolver
}

// Snapshot returns the current package snapshot. Call release when done.
func (e *Engine) Snapshot() (*cache.Snapshot, func()) {
	return e.cache.Acquire()
}

// Reset drops every imported package and reimports what the open files
// need.
func (e *Engine) Reset(ctx context.Context) {
	e.cache.Clear(ctx)
	e.mu.Lock()
	var parsed []*source.Parsed
	for _, f := range e.files {
		if f.parsed != nil {
			parsed = append(parsed, f.parsed)
		}
	}
	e.mu.Unlock()
	for _, p := range parsed {
		e.cache.Update(ctx, p)
	}
}

// Shutdown stops every background task and releases the cache. It gives
// up waiting for tasks when ctx is done.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, f := range e.files {
		if f.timer != nil && f.timer.Stop() {
			e.wg.Done()
		}
		if f.cancel != nil {
			f.cancel()
		}
	}
	e.cond.Broadcast()
	e.mu.Unlock()

	e.cancel()

	var err error
	waited := make(chan struct{})
	go func() {
		// parses first, they may still start highlight runs
		e.wg.Wait()
		e.checker.Close()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		err = multierr.Append(err, errors.Errorf("waiting for background tasks: %w", ctx.Err()))
	}
	return multierr.Append(err, e.cache.Close())
}
