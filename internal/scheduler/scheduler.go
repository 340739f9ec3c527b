// Package scheduler drives periodic refresh of view state.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrStale marks the result of a refresh cycle whose schedule was stopped or restarted.
	ErrStale = errors.New("scheduler: refresh result is stale")
	// ErrStopped is returned by RefreshNow when no schedule is active.
	ErrStopped = errors.New("scheduler: controller is stopped")
)

// CommitFunc applies a finished refresh to owned state.
type CommitFunc func()

// RefreshFunc performs the fetches of one cycle. It must not mutate shared
// state itself: it returns a CommitFunc that the controller runs only when the
// cycle still belongs to the active schedule. A non-nil CommitFunc returned
// with an error is still applied; it carries the sources that succeeded.
type RefreshFunc func(ctx context.Context) (CommitFunc, error)

// Hooks observe cycle outcomes. Any of them may be nil.
type Hooks struct {
	OnCommit func(name string)
	OnStale  func(name string)
	OnError  func(name string, err error)
}

// Option customises a Controller.
type Option func(*Controller)

// WithHooks installs outcome hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// Controller runs one refresh action immediately and then at a fixed interval.
//
// Overlapping cycles are not de-duplicated: if a cycle outlives the interval,
// the next one starts anyway and whichever finishes last wins. Commits are
// serialised and checked against a generation counter, so once Stop returns no
// cycle started before it can touch state. Fetches already issued are not
// cancelled; their results are dropped.
type Controller struct {
	name   string
	logger zerolog.Logger
	hooks  Hooks

	life sync.Mutex // serialises Start/Stop

	mu         sync.Mutex // guards the fields below and every commit
	generation uint64
	running    bool
	interval   time.Duration
	refresh    RefreshFunc
	fetchCtx   context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	inflight   int
	drained    *sync.Cond
}

// New constructs a Controller. name shows up in logs and hooks.
func New(name string, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		name:   name,
		logger: logger.With().Str("component", "scheduler").Str("view", name).Logger(),
	}
	c.drained = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the controller name.
func (c *Controller) Name() string {
	return c.name
}

// Start stops any previous schedule, runs refresh once right away and then
// every interval until Stop or until ctx is done. ctx is also handed to the
// refresh action.
func (c *Controller) Start(ctx context.Context, interval time.Duration, refresh RefreshFunc) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler %s: interval must be positive", c.name)
	}
	if refresh == nil {
		return fmt.Errorf("scheduler %s: refresh action is nil", c.name)
	}

	c.life.Lock()
	defer c.life.Unlock()

	c.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.running = true
	c.interval = interval
	c.refresh = refresh
	c.fetchCtx = ctx
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.logger.Info().Dur("interval", interval).Uint64("generation", gen).Msg("polling started")

	c.fire(ctx, gen, refresh)
	go c.loop(loopCtx, ctx, gen, interval, refresh, done)
	return nil
}

// Stop ends the active schedule and waits for its timer to be released.
// Cycles still in flight finish their fetches but their results are discarded.
func (c *Controller) Stop() {
	c.life.Lock()
	defer c.life.Unlock()
	c.stop()
}

func (c *Controller) stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.running = false
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.refresh, c.fetchCtx = nil, nil, nil, nil
	gen := c.generation
	c.mu.Unlock()

	cancel()
	<-done
	c.logger.Info().Uint64("generation", gen).Msg("polling stopped")
}

// Running reports whether a schedule is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Generation returns the current generation counter.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Interval returns the interval of the active schedule.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// RefreshNow runs one extra cycle of the active schedule synchronously and
// returns its outcome: nil, the fetch error, or ErrStale.
func (c *Controller) RefreshNow() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ErrStopped
	}
	gen, refresh, ctx := c.generation, c.refresh, c.fetchCtx
	c.inflight++
	c.mu.Unlock()

	return c.run(ctx, gen, refresh)
}

// Wait blocks until no cycle is in flight. It may be called while the
// schedule is running; ticks that fire during the wait are waited for too.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.drained.Wait()
	}
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.drained.Broadcast()
	}
	c.mu.Unlock()
}

func (c *Controller) loop(ctx, fetchCtx context.Context, gen uint64, interval time.Duration, refresh RefreshFunc, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logger.Debug().Uint64("generation", gen).Msg("tick")
			c.fire(fetchCtx, gen, refresh)
		}
	}
}

func (c *Controller) fire(ctx context.Context, gen uint64, refresh RefreshFunc) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	go func() {
		_ = c.run(ctx, gen, refresh)
	}()
}

func (c *Controller) run(ctx context.Context, gen uint64, refresh RefreshFunc) error {
	defer c.finish()

	started := time.Now()
	commit, err := refresh(ctx)

	c.mu.Lock()
	if gen != c.generation || !c.running {
		c.mu.Unlock()
		c.logger.Debug().Uint64("generation", gen).Err(ErrStale).Msg("discarding refresh result")
		if c.hooks.OnStale != nil {
			c.hooks.OnStale(c.name)
		}
		return ErrStale
	}
	if commit != nil {
		commit()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Uint64("generation", gen).Bool("partial", commit != nil).Msg("refresh failed; keeping previous state of failed sources")
		if c.hooks.OnError != nil {
			c.hooks.OnError(c.name, err)
		}
		return err
	}

	c.logger.Debug().Uint64("generation", gen).Dur("took", time.Since(started)).Msg("refresh committed")
	if c.hooks.OnCommit != nil {
		c.hooks.OnCommit(c.name)
	}
	return nil
}

// Chain combines several Hooks into one that calls each in order.
func Chain(hooks ...Hooks) Hooks {
	return Hooks{
		OnCommit: func(name string) {
			for _, h := range hooks {
				if h.OnCommit != nil {
					h.OnCommit(name)
				}
			}
		},
		OnStale: func(name string) {
			for _, h := range hooks {
				if h.OnStale != nil {
					h.OnStale(name)
				}
			}
		},
		OnError: func(name string, err error) {
			for _, h := range hooks {
				if h.OnError != nil {
					h.OnError(name, err)
				}
			}
		},
	}
}
