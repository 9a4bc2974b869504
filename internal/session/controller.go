// Package session runs the annotation workflow on a single event goroutine
// and fans state changes out to subscribers.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/workflow"
)

// ErrClosed is returned once the controller has stopped.
var ErrClosed = errors.New("session controller closed")

// Result is what a dispatched command produced, together with the view
// right after it was applied.
type Result struct {
	Outcome  workflow.Outcome
	Snapshot models.Snapshot
}

type request struct {
	cmd   workflow.Command
	query func(*workflow.Workflow)
	reply chan reply
}

type reply struct {
	res Result
	err error
}

// Controller serializes every access to the Workflow through one goroutine.
type Controller struct {
	wf       *workflow.Workflow
	requests chan request
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	subs    map[int]chan models.Snapshot
	nextSub int
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewController wraps wf. queueSize bounds the number of pending commands.
func NewController(wf *workflow.Workflow, queueSize int, logger zerolog.Logger, m *metrics.Metrics) *Controller {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Controller{
		wf:       wf,
		requests: make(chan request, queueSize),
		logger:   logger.With().Str("component", "session").Logger(),
		metrics:  m,
		subs:     make(map[int]chan models.Snapshot),
		done:     make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled or Close is called.
func (c *Controller) Run(ctx context.Context) {
	defer c.Close()
	c.logger.Info().Msg("Session loop started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Session loop stopped")
			return
		case <-c.done:
			return
		case req := <-c.requests:
			c.handle(req)
		}
	}
}

func (c *Controller) handle(req request) {
	if req.query != nil {
		req.query(c.wf)
		req.reply <- reply{}
		return
	}

	start := time.Now()
	out, err := c.wf.Apply(req.cmd)
	snap := c.wf.Snapshot()
	name := req.cmd.Name()

	switch {
	case err != nil:
		c.metrics.RecordCommand(name, "error")
		c.logger.Error().Err(err).Str("command", name).Msg("Command failed")
	case out.Changed:
		c.metrics.RecordCommand(name, "changed")
		c.metrics.SetSession(len(snap.Hotspots), snap.Placing)
		c.logger.Info().
			Str("command", name).
			Str("state", snap.State).
			Int("hotspots", len(snap.Hotspots)).
			Dur("took", time.Since(start)).
			Msg("Command applied")
		c.publish(snap)
	default:
		c.metrics.RecordCommand(name, "noop")
		c.logger.Debug().Str("command", name).Str("state", snap.State).Msg("Command had no effect")
	}

	req.reply <- reply{res: Result{Outcome: out, Snapshot: snap}, err: err}
}

// Dispatch enqueues cmd and waits until it has been applied.
func (c *Controller) Dispatch(ctx context.Context, cmd workflow.Command) (Result, error) {
	return c.do(ctx, request{cmd: cmd, reply: make(chan reply, 1)})
}

// Snapshot returns the current read-only view.
func (c *Controller) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	_, err := c.do(ctx, request{
		query: func(w *workflow.Workflow) { snap = w.Snapshot() },
		reply: make(chan reply, 1),
	})
	return snap, err
}

// Hotspot looks up a single hotspot by id.
func (c *Controller) Hotspot(ctx context.Context, id string) (models.Hotspot, bool, error) {
	var (
		h  models.Hotspot
		ok bool
	)
	_, err := c.do(ctx, request{
		query: func(w *workflow.Workflow) { h, ok = w.Hotspot(id) },
		reply: make(chan reply, 1),
	})
	return h, ok, err
}

func (c *Controller) do(ctx context.Context, req request) (Result, error) {
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.done:
		return Result{}, ErrClosed
	}
	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.done:
		return Result{}, ErrClosed
	}
}

// Subscribe registers for snapshots published after every state change.
// A subscriber that falls behind misses snapshots rather than stalling the
// loop. The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan models.Snapshot, buffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()
	c.metrics.AddSubscribers(1)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
				c.metrics.AddSubscribers(-1)
			}
		})
	}
}

func (c *Controller) publish(snap models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			c.logger.Warn().Int("subscriber", id).Msg("Subscriber is behind, snapshot skipped")
		}
	}
}

// Close stops the loop and closes all subscriber channels.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		for id, ch := range c.subs {
			delete(c.subs, id)
			close(ch)
			c.metrics.AddSubscribers(-1)
		}
	})
}
