package cache

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/golens/pkg/source"
)

const DefaultMaxWorkers = 10

// Options configure a Cache.
type Options struct {
	Fs       afero.Fs
	Resolver *PathResolver
	// MaxWorkers bounds the concurrent package imports.
	MaxWorkers int
	// SkipPatterns are doublestar patterns of files never imported.
	SkipPatterns []string
	Overlay      Overlay
}

// Cache is the registry of packages keyed by directory and name. Only the
// scheduler and Update mutate it, under mu; readers go through snapshots.
//
// Lock order: mu, then snapMu.
type Cache struct {
	opts     Options
	importer *importer

	mu      sync.Mutex
	pkgs    map[Key]*Package
	dirs    map[string]State
	files   map[string]Key            // file path to the key of its package
	latest  map[string]*source.Parsed // newest parse handed to Update, per path
	pending []string
	idle    chan struct{}

	snapMu sync.Mutex
	snap   *Snapshot
	refs   int
	dirty  bool

	ctx    context.Context
	cancel context.CancelFunc
	kick   chan struct{}
	done   chan struct{}
}

// New builds a cache and starts its scheduler. The scheduler stops when
// ctx is cancelled or Close is called.
func New(ctx context.Context, opts Options) *Cache {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	c := &Cache{
		opts:     opts,
		importer: &importer{fs: opts.Fs, skip: opts.SkipPatterns, overlay: opts.Overlay},
		idle:     make(chan struct{}),
	}
	close(c.idle)
	c.reset()
	c.snap = c.build()
	c.start(ctx)
	return c
}

func (c *Cache) reset() {
	c.pkgs = map[Key]*Package{}
	c.dirs = map[string]State{}
	c.files = map[string]Key{}
	c.latest = map[string]*source.Parsed{}
	c.pending = nil
}

func (c *Cache) start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.kick = make(chan struct{}, 1)
	c.done = make(chan struct{})
	go c.loop(c.ctx, c.kick, c.done)
}

// stop cancels the scheduler and waits for in-flight imports to finish.
func (c *Cache) stop() {
	c.cancel()
	<-c.done
}

// Close stops the scheduler, cancelling in-flight imports.
func (c *Cache) Close() error {
	c.stop()
	return nil
}

// Clear drops every package, for instance after the roots changed, and
// restarts the scheduler.
func (c *Cache) Clear(ctx context.Context) {
	c.stop()
	c.mu.Lock()
	c.reset()
	c.setIdle(true)
	c.publish()
	c.start(ctx)
	c.mu.Unlock()
	zerolog.Ctx(ctx).Debug().Msg("package cache cleared")
}

// State returns the import state of key.
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(key)
}

func (c *Cache) stateLocked(key Key) State {
	if st := c.dirs[key.Dir]; st != Ready {
		return st
	}
	if _, ok := c.pkgs[key]; ok {
		return Ready
	}
	return Unindexed
}

// Import requests the packages of the given keys. Keys that are already
// importing or ready are left alone, so calling Import again never
// queues duplicate work.
func (c *Cache) Import(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.enqueue(k.Dir)
	}
}

// enqueue queues dir unless it is importing or ready. Callers hold mu.
func (c *Cache) enqueue(dir string) bool {
	if dir == "" || c.dirs[dir] != Unindexed {
		return false
	}
	c.dirs[dir] = Importing
	c.pending = append(c.pending, dir)
	c.setIdle(false)
	select {
	case c.kick <- struct{}{}:
	default:
	}
	return true
}

func (c *Cache) setIdle(idle bool) {
	select {
	case <-c.idle:
		if !idle {
			c.idle = make(chan struct{})
		}
	default:
		if idle {
			close(c.idle)
		}
	}
}

// Wait blocks until every queued import, including the dependencies the
// imports discover, has been inserted.
func (c *Cache) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return errors.Errorf("waiting for imports: %w", ctx.Err())
	}
}

// Update merges a freshly parsed file into its package. A file that moved
// to another package leaves the old one; a file of a package the cache has
// not seen yet makes the cache import the rest of its directory. Imports
// of the file that are new to the cache are queued.
func (c *Cache) Update(ctx context.Context, p *source.Parsed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.latest[p.Path]; ok && prev.Revision > p.Revision {
		return
	}
	c.latest[p.Path] = p

	key := Key{Dir: p.Dir(), Name: p.Package()}
	if old, ok := c.files[p.Path]; ok && old != key {
		if pkg := c.pkgs[old]; pkg != nil {
			c.pkgs[old] = pkg.without(p.Path)
		}
		zerolog.Ctx(ctx).Debug().Str("file", p.Path).Stringer("from", old).Stringer("to", key).Msg("file changed package")
	}
	c.files[p.Path] = key

	if pkg, ok := c.pkgs[key]; ok {
		c.pkgs[key] = pkg.with(p)
	} else {
		c.pkgs[key] = NewPackage(key, p)
		if c.dirs[key.Dir] == Ready {
			c.dirs[key.Dir] = Unindexed
		}
		c.enqueue(key.Dir)
	}
	c.discover(ctx, p)
	c.publish()
}

// Remove drops a file that no longer exists.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.files[path]
	if !ok {
		return
	}
	delete(c.files, path)
	delete(c.latest, path)
	if pkg := c.pkgs[key]; pkg != nil {
		c.pkgs[key] = pkg.without(path)
	}
	c.publish()
}

// discover queues the directories p imports. Callers hold mu.
func (c *Cache) discover(ctx context.Context, p *source.Parsed) {
	if c.opts.Resolver == nil {
		return
	}
	for _, imp := range p.Imports() {
		if imp.Path == "" || imp.Path == "C" {
			continue
		}
		dir, ok := c.opts.Resolver.Dir(imp.Path, p.Dir())
		if !ok {
			zerolog.Ctx(ctx).Trace().Str("import", imp.Path).Str("file", p.Path).Msg("unresolved import")
			continue
		}
		c.enqueue(dir)
	}
}

func (c *Cache) loop(ctx context.Context, kick <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-kick:
		}
		c.drain(ctx)
	}
}

type importResult struct {
	dir  string
	pkgs []*Package
	err  error
}

// drain runs queued imports in batches on a bounded pool until no new
// dependencies turn up.
func (c *Cache) drain(ctx context.Context) {
	for {
		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		if len(batch) == 0 {
			c.setIdle(true)
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		id := uuid.New()
		log := zerolog.Ctx(ctx).With().Str("task", id.String()).Logger()
		log.Debug().Int("dirs", len(batch)).Msg("importing packages")

		results := make([]importResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.opts.MaxWorkers)
		for i, dir := range batch {
			i, dir := i, dir
			g.Go(func() error {
				pkgs, err := c.importer.importDir(gctx, dir)
				results[i] = importResult{dir: dir, pkgs: pkgs, err: err}
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			log.Debug().Msg("import batch cancelled")
			return
		}

		var merr *multierror.Error
		c.mu.Lock()
		for _, r := range results {
			if r.err != nil {
				merr = multierror.Append(merr, r.err)
			}
			c.insert(log.WithContext(ctx), r)
		}
		c.publish()
		c.mu.Unlock()

		if err := merr.ErrorOrNil(); err != nil {
			log.Warn().Err(err).Msg("some packages failed to import")
		}
	}
}

// insert stores the packages of one directory. Files handed to Update
// since the import started win over what the import read. A directory
// that could not be read still gets an empty package. Callers hold mu.
func (c *Cache) insert(ctx context.Context, r importResult) {
	c.dirs[r.dir] = Ready

	if r.err != nil {
		key := Key{Dir: r.dir, Name: filepath.Base(r.dir)}
		if _, ok := c.pkgs[key]; !ok {
			pkg := NewPackage(key)
			pkg.Err = r.err
			c.pkgs[key] = pkg
		}
		return
	}

	for _, pkg := range r.pkgs {
		merged := c.pkgs[pkg.Key]
		if merged == nil {
			merged = NewPackage(pkg.Key)
		}
		for path, f := range pkg.Files {
			if newer, ok := c.latest[path]; ok && newer.Revision >= f.Revision {
				f = newer
			}
			key := Key{Dir: f.Dir(), Name: f.Package()}
			if key != pkg.Key {
				continue
			}
			merged = merged.with(f)
			c.files[path] = key
			c.discover(ctx, f)
		}
		c.pkgs[pkg.Key] = merged
	}
}

// Acquire returns the current snapshot and a function releasing it. The
// snapshot is never replaced while any reader holds it.
func (c *Cache) Acquire() (*Snapshot, func()) {
	c.snapMu.Lock()
	s := c.snap
	c.refs++
	c.snapMu.Unlock()

	var once sync.Once
	return s, func() { once.Do(c.release) }
}

func (c *Cache) release() {
	c.snapMu.Lock()
	c.refs--
	rebuild := c.refs == 0 && c.dirty
	c.snapMu.Unlock()
	if rebuild {
		c.mu.Lock()
		c.publish()
		c.mu.Unlock()
	}
}

// publish replaces the snapshot, or marks it dirty while readers hold
// it. Callers hold mu.
func (c *Cache) publish() {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	if c.refs > 0 {
		c.dirty = true
		return
	}
	c.snap = c.build()
	c.dirty = false
}

// build copies the package map into a new snapshot. Callers hold mu.
func (c *Cache) build() *Snapshot {
	s := &Snapshot{
		pkgs:     make(map[Key]*Package, len(c.pkgs)),
		byDir:    map[string][]*Package{},
		resolver: c.opts.Resolver,
	}
	for k, p := range c.pkgs {
		s.pkgs[k] = p
		s.byDir[k.Dir] = append(s.byDir[k.Dir], p)
	}
	for _, list := range s.byDir {
		sortPackages(list)
	}
	return s
}
