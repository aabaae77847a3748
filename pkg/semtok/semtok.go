package semtok

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// ErrStale is returned by a run whose file moved on to a newer revision,
// or which a newer run for the same file replaced.
var ErrStale = errors.Base("stale highlight run")

// Acquirer hands out a world to resolve against and the func releasing it.
type Acquirer func() (types.World, func())

// Revisions reports the current revision of a file.
type Revisions func(path string) int

type run struct {
	id     string
	rev    int
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner runs Check in the background, at most one run per file.
type Runner struct {
	acquire Acquirer
	current Revisions
	chunk   int

	mu   sync.Mutex
	runs map[string]*run
	wg   sync.WaitGroup
}

func NewRunner(acquire Acquirer, current Revisions, chunk int) *Runner {
	return &Runner{acquire: acquire, current: current, chunk: chunk, runs: map[string]*run{}}
}

// Start cancels any run of p's file and highlights p in the background.
// publish receives the chunks while p's revision is still current; it is
// called with the runner's lock held, so it must not call back into the
// runner. The returned channel closes when the run ends.
func (r *Runner) Start(ctx context.Context, p *source.Parsed, publish func(Chunk)) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)
	cur := &run{id: uuid.NewString(), rev: p.Revision, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	if prev := r.runs[p.Path]; prev != nil {
		prev.cancel()
	}
	r.runs[p.Path] = cur
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().Str("task", cur.id).Str("file", p.Path).Int("revision", p.Revision).Logger()
	ctx = logger.WithContext(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(cur.done)
		defer r.finish(p.Path, cur)

		world, release := r.acquire()
		defer release()

		err := Check(ctx, p, world, r.chunk, func(c Chunk) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.runs[p.Path] != cur || ctx.Err() != nil || r.current(p.Path) != cur.rev {
				return ErrStale
			}
			c.Run = cur.id
			publish(c)
			return nil
		})
		switch {
		case err == nil:
			logger.Debug().Msg("highlight run done")
		case errors.Is(err, ErrStale), errors.Is(err, context.Canceled):
			logger.Debug().Err(err).Msg("highlight run discarded")
		default:
			logger.Warn().Err(err).Msg("highlight run failed")
		}
	}()
	return cur.done
}

func (r *Runner) finish(path string, cur *run) {
	cur.cancel()
	r.mu.Lock()
	if r.runs[path] == cur {
		delete(r.runs, path)
	}
	r.mu.Unlock()
}

// Cancel stops the run of path, if any.
func (r *Runner) Cancel(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur := r.runs[path]; cur != nil {
		cur.cancel()
	}
}

// Running reports whether a run of path is in flight.
func (r *Runner) Running(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[path] != nil
}

// Close cancels every run and waits for them to end.
func (r *Runner) Close() {
	r.mu.Lock()
	for _, cur := range r.runs {
		cur.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
