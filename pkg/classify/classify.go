// Package classify annotates every package of a dependency graph with its
// Debian packaging status.
//
// [Run] fans one task per graph vertex out to a pool of workers. Each worker
// opens its own [Classifier] (a database connection is not shared between
// goroutines) and sends its results back over a channel. Only the
// coordinating goroutine writes to the graph.
package classify

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/observability"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// DefaultConcurrency is the worker count used when Options.Concurrency is
// not positive.
const DefaultConcurrency = 24

// Classifier looks up the Debian status of one crate version.
// A Classifier is used by a single goroutine.
type Classifier interface {
	Classify(ctx context.Context, name, version string) (*udd.Info, error)
	Close() error
}

// ConnectFunc opens a Classifier for one worker.
type ConnectFunc func(ctx context.Context) (Classifier, error)

// Options configures Run.
type Options struct {
	// Concurrency is the number of workers. Defaults to DefaultConcurrency.
	Concurrency int
	// Connect opens the classifier of each worker.
	Connect ConnectFunc
	// Progress, if set, is called by the coordinator after every result.
	Progress func(done, total int)
	// Logger defaults to log.Default().
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

type task struct {
	id      graph.NodeID
	name    string
	version string
}

type result struct {
	task
	info     *udd.Info
	err      error
	duration time.Duration
}

// Run classifies every live vertex of g and stores the result in its
// Debian field. The first error aborts the run: remaining queued tasks are
// skipped and the error is returned. Vertices classified before the error
// keep their annotation.
func Run(ctx context.Context, g *graph.Graph, opts Options) (err error) {
	opts = opts.withDefaults()
	if opts.Connect == nil {
		return errors.New(errors.ErrCodeInternal, "classify: no connect function")
	}

	ids := g.Nodes()
	if len(ids) == 0 {
		return nil
	}
	workers := min(opts.Concurrency, len(ids))

	hooks := observability.Classify()
	start := time.Now()
	hooks.OnRunStart(ctx, len(ids), workers)
	defer func() { hooks.OnRunComplete(ctx, len(ids), time.Since(start), err) }()

	tasks := make(chan task, len(ids))
	for _, id := range ids {
		p := g.Node(id)
		tasks <- task{id: id, name: p.Name, version: p.Version.String()}
	}
	close(tasks)

	// Room for one result per task plus one connect failure per worker.
	results := make(chan result, len(ids)+workers)

	workCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(workCtx, opts.Connect, tasks, results)
		}()
	}
	defer func() {
		cancel()
		wg.Wait()
	}()

	opts.Logger.Debug("classifying", "packages", len(ids), "workers", workers)
	return collect(ctx, g, opts, len(ids), results)
}

func work(ctx context.Context, connect ConnectFunc, tasks <-chan task, results chan<- result) {
	c, err := connect(ctx)
	if err != nil {
		results <- result{err: err}
		return
	}
	defer c.Close()

	for t := range tasks {
		if ctx.Err() != nil {
			continue
		}
		start := time.Now()
		info, err := c.Classify(ctx, t.name, t.version)
		results <- result{task: t, info: info, err: err, duration: time.Since(start)}
	}
}

func collect(ctx context.Context, g *graph.Graph, opts Options, total int, results <-chan result) error {
	hooks := observability.Classify()
	for done := 0; done < total; {
		select {
		case r := <-results:
			if r.err != nil {
				if r.name == "" {
					return r.err
				}
				return wrap(r.err, "classify %s %s", r.name, r.version)
			}
			g.SetDebian(r.id, r.info)
			done++

			tier := r.info.Progress()
			hooks.OnPackage(ctx, tier.String(), r.duration)
			opts.Logger.Debug("classified", "package", r.name, "version", r.version, "status", tier)
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// wrap adds context to err while keeping its code.
func wrap(err error, format string, args ...any) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, format, args...)
}
