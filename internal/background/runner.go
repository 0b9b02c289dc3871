// Package background runs fire-and-forget work for the study engines.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrRunnerClosed is returned by Go after Close.
var ErrRunnerClosed = errors.New("background runner closed")

// Task is a unit of background work. A returned error is logged, never
// propagated to the submitter.
type Task func(ctx context.Context) error

// Runner executes tasks on goroutines, at most workers at a time. Submitting
// never blocks the caller: a task waits for a free slot on its own goroutine.
type Runner struct {
	logger *zap.Logger
	slots  chan struct{}
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	closeMu sync.Mutex
	closed  bool
}

// New creates a Runner allowing workers concurrent tasks.
func New(workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger: logger.Named("background"),
		slots:  make(chan struct{}, workers),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go schedules task under name. Tasks run with the runner's context, not the
// submitter's, so they outlive the call that triggered them.
func (r *Runner) Go(name string, task Task) error {
	return r.submit(name, task, nil)
}

// submit schedules task and calls done, when set, once the task has
// finished or has been dropped.
func (r *Runner) submit(name string, task Task, done func()) error {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		return ErrRunnerClosed
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if done != nil {
			defer done()
		}
		select {
		case r.slots <- struct{}{}:
		case <-r.ctx.Done():
			return
		}
		defer func() { <-r.slots }()

		if err := r.run(task); err != nil {
			r.logger.Warn("task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	return nil
}

func (r *Runner) run(task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task(r.ctx)
}

// Wait blocks until every submitted task, including tasks submitted by
// running tasks, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close stops accepting tasks, waits for in-flight ones and releases the
// runner context.
func (r *Runner) Close() {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	r.closeMu.Unlock()

	r.wg.Wait()
	r.cancel()
}

// Group tracks the tasks one owner submits to a shared Runner, so the owner
// can wait for its own work without draining everybody else's.
type Group struct {
	r  *Runner
	wg sync.WaitGroup
}

// Group returns a new task group on r.
func (r *Runner) Group() *Group {
	return &Group{r: r}
}

// Go schedules task on the runner as part of the group.
func (g *Group) Go(name string, task Task) error {
	g.wg.Add(1)
	if err := g.r.submit(name, task, g.wg.Done); err != nil {
		g.wg.Done()
		return err
	}
	return nil
}

// Wait blocks until every task submitted through the group has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
